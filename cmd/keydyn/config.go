package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keydyn/internal/extract"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/logging"
	"github.com/verte-zerg/keydyn/internal/participants"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	criteria := participants.DefaultCriteria()
	logCfg := logging.DefaultConfig()
	return fmt.Sprintf(`# keydyn configuration
# Uncomment a value to enable it. CLI flags override config values.

[extract]
# keystroke-dir = "."     # Directory holding <id>_keystrokes.txt files
# pattern = %q   # File name pattern, %%d is the participant ID
# out = "."               # Directory for the CSV outputs
# min-interval = %d       # Smallest plausible interval in ms
# max-interval = %d     # Largest plausible interval in ms
# workers = 4             # Participants processed in parallel
# no-store = false        # Skip saving runs to the database
# db = "~/.local/share/keydyn/keydyn.db"   # ~ expands to the home directory

[filter]
# layouts = %s
# fingers = %s
# keyboard-types = %s
# max-error-rate = %.1f   # Keep participants strictly below this rate

[log]
# level = %q          # debug, info, warn, error
# format = %q      # console or json
# file = "/path/to/keydyn.log"   # JSON log file, rotated by size
# max-size-mb = %d
# max-backups = %d
# max-age-days = %d
# compress = false
`,
		keylog.DefaultPattern,
		extract.DefaultBounds.MinMs,
		extract.DefaultBounds.MaxMs,
		tomlList(criteria.Layouts),
		tomlList(criteria.Fingers),
		tomlList(criteria.KeyboardTypes),
		criteria.MaxErrorRate,
		logCfg.Level,
		logCfg.Format,
		logCfg.MaxSizeMB,
		logCfg.MaxBackups,
		logCfg.MaxAgeDays,
	)
}

func tomlList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
