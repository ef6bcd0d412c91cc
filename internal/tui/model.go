// Package tui provides the Bubble Tea keystroke recorder.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/synth"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model records keystrokes while a participant types a list of sentences.
type Model struct {
	participantID int
	sentences     []string
	index         int
	now           func() time.Time

	width  int
	height int

	targetRunes []rune
	inputRunes  []rune
	pending     []model.KeystrokeEvent
	events      []model.KeystrokeEvent

	startedAt time.Time
	correct   int
	incorrect int

	lastWPM float64
	lastAcc float64
	hasLast bool
	done    bool
}

// Option customizes a Model.
type Option func(*Model)

// WithClock replaces the wall clock used for press times.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// NewModel constructs a recorder for one participant.
func NewModel(participantID int, sentences []string, opts ...Option) *Model {
	m := &Model{
		participantID: participantID,
		sentences:     sentences,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startSentence()
	return m
}

// Events returns the keystrokes of every completed sentence.
func (m *Model) Events() []model.KeystrokeEvent {
	return m.events
}

// Done reports whether every sentence was typed.
func (m *Model) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
			return m, nil
		case tea.KeySpace:
			return m, m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done || len(m.targetRunes) == 0 {
		return ""
	}
	text := renderTarget(m.targetRunes, m.inputRunes)
	if m.width == 0 || m.height == 0 {
		return text
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(text)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

func (m *Model) record(char string) time.Time {
	now := m.now()
	target := string(m.targetRunes)
	m.pending = append(m.pending, model.KeystrokeEvent{
		Char:      char,
		PressTime: now.UnixMilli(),
		Sentence: model.SentenceID{
			Section:  strconv.Itoa(m.participantID*1000 + m.index + 1),
			Sentence: target,
		},
		TargetText: target,
	})
	return now
}

func (m *Model) handleBackspace() {
	if m.done {
		return
	}
	m.record(synth.KeyBackspace)
	if len(m.inputRunes) == 0 {
		return
	}
	m.inputRunes = m.inputRunes[:len(m.inputRunes)-1]
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	for _, r := range runes {
		if m.done {
			return tea.Quit
		}
		pressed := m.record(string(r))
		if m.startedAt.IsZero() {
			m.startedAt = pressed
		}
		expected := m.targetRunes[len(m.inputRunes)]
		m.inputRunes = append(m.inputRunes, r)
		if expected != ' ' {
			if r == expected {
				m.correct++
			} else {
				m.incorrect++
			}
		}
		if len(m.inputRunes) == len(m.targetRunes) {
			m.finishSentence()
		}
	}
	if m.done {
		return tea.Quit
	}
	return nil
}

func (m *Model) finishSentence() {
	typed := string(m.inputRunes)
	for i := range m.pending {
		m.pending[i].TypedText = typed
		m.pending[i].Seq = len(m.events) + i
	}
	m.events = append(m.events, m.pending...)

	durationMs := m.pending[len(m.pending)-1].PressTime - m.startedAt.UnixMilli()
	m.lastWPM, m.lastAcc = sentenceMetrics(m.correct, m.incorrect, durationMs)
	m.hasLast = true

	m.index++
	m.startSentence()
}

func (m *Model) startSentence() {
	m.pending = nil
	m.inputRunes = nil
	m.startedAt = time.Time{}
	m.correct = 0
	m.incorrect = 0
	if m.index >= len(m.sentences) {
		m.targetRunes = nil
		m.done = true
		return
	}
	m.targetRunes = []rune(m.sentences[m.index])
}

func (m *Model) renderFooter() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	progress := int(float64(len(m.inputRunes)) / float64(len(m.targetRunes)) * 100)
	segments := []string{
		fmt.Sprintf("Sentence %d/%d", m.index+1, len(m.sentences)),
		fmt.Sprintf("Progress %d%%", progress),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// sentenceMetrics returns words per minute over correct characters and accuracy.
func sentenceMetrics(correct, incorrect int, durationMs int64) (float64, float64) {
	var wpm, acc float64
	if durationMs > 0 {
		wpm = float64(correct) / 5 / (float64(durationMs) / 60000)
	}
	if total := correct + incorrect; total > 0 {
		acc = float64(correct) / float64(total)
	}
	return wpm, acc
}
