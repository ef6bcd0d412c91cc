// Package pipeline runs keystroke extraction over a list of participants.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/keydyn/internal/extract"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/logging"
	"github.com/verte-zerg/keydyn/internal/model"
)

// Status classifies how a participant was handled.
type Status int

const (
	// StatusOK means at least one measurement was produced.
	StatusOK Status = iota
	// StatusNoData means the log was read but nothing survived alignment and filtering.
	StatusNoData
	// StatusMissing means the keystroke log does not exist.
	StatusMissing
	// StatusSkipped means the log exists but could not be used.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoData:
		return "no-data"
	case StatusMissing:
		return "missing"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Options configures a run.
type Options struct {
	KeystrokeDir string
	// Pattern is a fmt pattern with one %d verb for the participant ID.
	Pattern string
	Bounds  model.Bounds
	// Workers bounds how many participants are processed at once. Values below 1 mean 1.
	Workers int
	Logger  *zap.Logger
	// Progress is called once per participant, in input order.
	Progress func(Outcome)
}

// Outcome is the result of processing one participant.
type Outcome struct {
	ParticipantID int
	Path          string
	Status        Status
	Err           error
	Result        model.ParticipantResult
}

// Totals aggregates counters over a run.
type Totals struct {
	Requested int
	Processed int
	NoData    int
	Missing   int
	Skipped   int
	Counts    model.Counts
}

// Result holds every participant outcome and the flattened measurement streams
// in participant order, then sentence order.
type Result struct {
	Outcomes  []Outcome
	Bigrams   []model.BigramRecord
	Words     []model.WordRecord
	Sentences []model.SentenceRecord
	Totals    Totals
}

// Run processes every participant. Per-participant failures are recorded in the
// outcomes and never abort the run; only context cancellation does.
func Run(ctx context.Context, ids []int, opts Options) (*Result, error) {
	p := &processor{
		opts:      opts,
		logger:    logging.OrNop(opts.Logger),
		extractor: extract.New(extract.NewOutlierFilter(opts.Bounds)),
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(ids))
	ready := make([]chan struct{}, len(ids))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		for i := range ids {
			<-ready[i]
			if ctx.Err() != nil {
				continue
			}
			if opts.Progress != nil {
				opts.Progress(outcomes[i])
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			defer close(ready[i])
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.participant(id)
			return nil
		})
	}
	err := g.Wait()
	<-reported
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collect(outcomes), nil
}

type processor struct {
	opts      Options
	logger    *zap.Logger
	extractor *extract.Extractor
}

func (p *processor) participant(id int) Outcome {
	path := keylog.Path(p.opts.KeystrokeDir, p.opts.Pattern, id)
	out := Outcome{ParticipantID: id, Path: path, Result: model.ParticipantResult{ParticipantID: id}}

	log, err := keylog.LoadFile(path)
	if err != nil {
		out.Err = err
		switch {
		case errors.Is(err, keylog.ErrMissingFile):
			out.Status = StatusMissing
			p.logger.Warn("keystroke log not found", zap.Int("participant", id), zap.String("path", path))
		case errors.Is(err, keylog.ErrMissingColumn):
			out.Status = StatusSkipped
			p.logger.Warn("keystroke log is missing a required column", zap.Int("participant", id), zap.Error(err))
		default:
			out.Status = StatusSkipped
			p.logger.Warn("failed to read keystroke log", zap.Int("participant", id), zap.Error(err))
		}
		return out
	}

	res := p.extractor.Participant(id, log.Groups)
	res.Counts.MalformedRows = log.MalformedRows
	res.Counts.ShortRows = log.ShortRows
	if log.MalformedRows > 0 || log.ShortRows > 0 {
		p.logger.Debug("skipped unusable rows",
			zap.Int("participant", id),
			zap.Int("malformed", log.MalformedRows),
			zap.Int("short", log.ShortRows))
	}
	out.Result = res
	out.Status = StatusOK
	if res.Empty() {
		out.Status = StatusNoData
	}
	return out
}

func collect(outcomes []Outcome) *Result {
	res := &Result{Outcomes: outcomes}
	res.Totals.Requested = len(outcomes)
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			res.Totals.Processed++
		case StatusNoData:
			res.Totals.NoData++
		case StatusMissing:
			res.Totals.Missing++
		case StatusSkipped:
			res.Totals.Skipped++
		}
		res.Bigrams = append(res.Bigrams, o.Result.Bigrams...)
		res.Words = append(res.Words, o.Result.Words...)
		res.Sentences = append(res.Sentences, o.Result.Sentences...)
		res.Totals.Counts.Add(o.Result.Counts)
	}
	return res
}
