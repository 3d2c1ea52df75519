// Package pipeline runs one statement conversion end to end: load, clean,
// split and write. Callers see a Result, never an error or a panic.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/balance-mate/balancemate/internal/report"
	"github.com/balance-mate/balancemate/internal/runlog"
	"github.com/balance-mate/balancemate/internal/statement"
)

// SuccessMessage is the Result message of every successful run.
const SuccessMessage = "Proceso completado con éxito."

const failurePrefix = "Error durante el procesamiento: "

// progressBuffer is how many progress values a Run holds for a caller that
// is slow to read them.
const progressBuffer = 128

// ReportWriter writes incoming movements into a report and returns its path.
type ReportWriter interface {
	Write(incoming []statement.Movement, month, year string, progress report.ProgressFunc) (string, error)
}

// Result is the outcome of one run.
type Result struct {
	OK         bool
	Message    string
	OutputPath string // empty unless OK
}

// Processor converts statement files into reports.
type Processor struct {
	writer ReportWriter
	log    zerolog.Logger
	runLog string
	now    func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for step diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithRunLog appends every finished run to the CSV history at path.
func WithRunLog(path string) Option {
	return func(p *Processor) { p.runLog = path }
}

// New returns a Processor writing reports with w.
func New(w ReportWriter, opts ...Option) *Processor {
	p := &Processor{
		writer: w,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process converts the statement at path into a report for month and year.
// The file is expected to have passed statement.Validate already. progress,
// if non-nil, receives the percentage of report rows written.
func (p *Processor) Process(path, month, year string, progress report.ProgressFunc) (res Result) {
	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Str("input", path).Logger()
	started := p.now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("run aborted")
			res = failure(fmt.Errorf("unexpected fault: %v", r))
		}
		p.record(log, runlog.Entry{
			Timestamp: started,
			RunID:     runID,
			Input:     path,
			Month:     month,
			Year:      year,
			OK:        res.OK,
			Message:   res.Message,
			Output:    res.OutputPath,
		})
	}()

	out, err := p.run(log, path, month, year, progress)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return failure(err)
	}
	log.Info().Str("output", out).Dur("elapsed", p.now().Sub(started)).Msg("run finished")
	return Result{OK: true, Message: SuccessMessage, OutputPath: out}
}

func (p *Processor) run(log zerolog.Logger, path, month, year string, progress report.ProgressFunc) (string, error) {
	log.Debug().Msg("reading file")
	tbl, err := statement.Load(path)
	if err != nil {
		return "", err
	}

	log.Debug().Int("rows", tbl.Len()).Msg("cleaning data")
	movements, err := statement.Clean(tbl)
	if err != nil {
		return "", err
	}

	log.Debug().Int("movements", len(movements)).Msg("splitting by direction")
	part := statement.Split(movements)
	log.Info().
		Int("outgoing", len(part.Outgoing)).
		Int("incoming", len(part.Incoming)).
		Msg("movements split")

	// Only the incoming balance has a report so far; part.Outgoing is
	// ready for an outgoing report once a template exists for it.
	log.Debug().Msg("writing incoming balance")
	out, err := p.writer.Write(part.Incoming, month, year, progress)
	if err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return out, nil
}

func (p *Processor) record(log zerolog.Logger, e runlog.Entry) {
	if p.runLog == "" {
		return
	}
	if err := runlog.Append(p.runLog, []runlog.Entry{e}); err != nil {
		log.Warn().Err(err).Str("run_log", p.runLog).Msg("recording run")
	}
}

func failure(err error) Result {
	return Result{OK: false, Message: failurePrefix + err.Error()}
}

// Run is a conversion executing on its own goroutine.
type Run struct {
	progress chan int
	done     chan Result
}

// Start begins a conversion in the background and returns immediately.
// Progress values arrive on Run.Progress, which is closed when the run
// ends; the Result is delivered on Run.Done after that. The run never
// waits on a slow reader: intermediate values are dropped while the buffer
// is full, and the final 100 always gets through.
func (p *Processor) Start(path, month, year string) *Run {
	r := &Run{
		progress: make(chan int, progressBuffer),
		done:     make(chan Result, 1),
	}
	go func() {
		res := p.Process(path, month, year, r.report)
		close(r.progress)
		r.done <- res
		close(r.done)
	}()
	return r
}

// report is the only sender on r.progress. One slot stays free for 100,
// which the writer reports at most once.
func (r *Run) report(percent int) {
	if percent < 100 && len(r.progress) >= cap(r.progress)-1 {
		return
	}
	r.progress <- percent
}

// Progress returns the channel of completion percentages.
func (r *Run) Progress() <-chan int { return r.progress }

// Done returns the channel that receives the single Result. Callers not
// interested in progress can use Wait instead.
func (r *Run) Done() <-chan Result { return r.done }

// Wait discards remaining progress and blocks until the Result is ready.
func (r *Run) Wait() Result {
	for range r.progress {
	}
	return <-r.done
}
