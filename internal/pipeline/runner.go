// Package pipeline drives questions through the completion endpoint one at a
// time, logging every attempt and checkpointing the answers as it goes.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/records"
)

const (
	// DefaultModel is used for records that do not name a model.
	DefaultModel = "openai/o4-mini"
	// DefaultSection labels every activity entry.
	DefaultSection = "Numerical Linear Algebra"
)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart       EventType = "run_start"
	EventRecordStart    EventType = "record_start"
	EventRecordComplete EventType = "record_complete"
	EventSaved          EventType = "saved"
	EventSaveFailed     EventType = "save_failed"
	EventRunComplete    EventType = "run_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	// RecordNum is 1-based; zero for run-level events.
	RecordNum    int
	TotalRecords int
	Question     string
	Model        string
	State        State
	Outcome      completion.Outcome
	// Persisted is the number of records in the sequence that was saved.
	Persisted  int
	Err        error
	DurationMs int64
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDefaultModel sets the model used for records without one.
func WithDefaultModel(model string) RunnerOption {
	return func(r *Runner) {
		if model != "" {
			r.defaultModel = model
		}
	}
}

// WithSection sets the section label written to the activity log.
func WithSection(section string) RunnerOption {
	return func(r *Runner) {
		r.section = section
	}
}

// WithAutoSaveInterval flushes the output every k records. Values below 1 mean 1.
func WithAutoSaveInterval(k int) RunnerOption {
	return func(r *Runner) {
		r.interval = max(k, 1)
	}
}

// WithClock replaces time.Now for activity timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner processes input records strictly in order.
type Runner struct {
	completer Completer
	recorder  Recorder
	persister Persister

	defaultModel string
	section      string
	interval     int
	now          func() time.Time

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Result is the outcome of a whole run. Records and States are index-aligned
// with the inputs.
type Result struct {
	Records    []records.OutputRecord
	States     []State
	Answered   int
	Flagged    int
	Failed     int
	SaveErrors int
}

// NewRunner creates a runner. A nil recorder discards activity entries.
func NewRunner(completer Completer, recorder Recorder, persister Persister, opts ...RunnerOption) *Runner {
	if recorder == nil {
		recorder = activity.NopLogger{}
	}
	r := &Runner{
		completer:    completer,
		recorder:     recorder,
		persister:    persister,
		defaultModel: DefaultModel,
		section:      DefaultSection,
		interval:     1,
		now:          time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run asks for an answer to every input, in order, and never skips one.
// The output is flushed after every interval records and once more after
// the last record, so an empty input still produces an empty output file.
func (r *Runner) Run(ctx context.Context, inputs []records.InputRecord) *Result {
	start := time.Now()
	res := &Result{
		Records: make([]records.OutputRecord, 0, len(inputs)),
		States:  make([]State, len(inputs)),
	}
	for i := range res.States {
		res.States[i] = StatePending
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunStart, TotalRecords: len(inputs)})

	for i, in := range inputs {
		model := in.Model
		if model == "" {
			model = r.defaultModel
		}

		res.States[i] = StateRequested
		r.notifyProgress(ProgressEvent{
			EventType:    EventRecordStart,
			RecordNum:    i + 1,
			TotalRecords: len(inputs),
			Question:     in.Question,
			Model:        model,
			State:        StateRequested,
		})

		callStart := time.Now()
		out := r.completer.Complete(ctx, model, in.Question)
		state := Classify(out)
		res.States[i] = state

		r.recorder.Record(activity.Entry{
			Timestamp: r.now(),
			Section:   r.section,
			Question:  in.Question,
			Model:     model,
			Status:    out.Status,
			Err:       out.Err,
		})
		res.States[i] = StateLogged

		answer := out.Text
		if out.Err != nil {
			answer = completion.NoAnswer
		}
		res.Records = append(res.Records, records.OutputRecord{
			Question: in.Question,
			Answer:   answer,
			Flagged:  state == StateFlagged,
		})

		switch state {
		case StateAnswered:
			res.Answered++
		case StateFlagged:
			res.Flagged++
		default:
			res.Failed++
		}

		r.notifyProgress(ProgressEvent{
			EventType:    EventRecordComplete,
			RecordNum:    i + 1,
			TotalRecords: len(inputs),
			Question:     in.Question,
			Model:        model,
			State:        state,
			Outcome:      out,
			Err:          out.Err,
			DurationMs:   time.Since(callStart).Milliseconds(),
		})

		if (i+1)%r.interval == 0 {
			r.flush(res)
		}
	}

	r.flush(res)

	r.notifyProgress(ProgressEvent{
		EventType:    EventRunComplete,
		TotalRecords: len(inputs),
		Persisted:    len(res.Records),
		DurationMs:   time.Since(start).Milliseconds(),
	})
	return res
}

// flush saves the whole output sequence so far. Failures leave the states
// untouched and are only reported.
func (r *Runner) flush(res *Result) {
	n := len(res.Records)
	if err := r.persister.Save(res.Records); err != nil {
		res.SaveErrors++
		slog.Debug("Saving answers failed", "records", n, "error", err)
		r.notifyProgress(ProgressEvent{EventType: EventSaveFailed, Persisted: n, Err: err})
		return
	}
	for i := range n {
		res.States[i] = StatePersisted
	}
	r.notifyProgress(ProgressEvent{EventType: EventSaved, Persisted: n})
}
