package main

import (
	"fmt"
	"io"
	"time"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/pipeline"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/spinner"
)

// progressReporter prints one block per question while a run is going.
type progressReporter struct {
	out        io.Writer
	errOut     io.Writer
	outputPath string
	verbose    bool
	useSpinner bool
	stop       func()
}

func newProgressReporter(out, errOut io.Writer, outputPath string, verbose, useSpinner bool) *progressReporter {
	return &progressReporter{
		out:        out,
		errOut:     errOut,
		outputPath: outputPath,
		verbose:    verbose,
		useSpinner: useSpinner,
	}
}

func (r *progressReporter) handle(event pipeline.ProgressEvent) {
	switch event.EventType {
	case pipeline.EventRunStart:
		if r.verbose {
			fmt.Fprintf(r.out, "%d question(s) to process\n\n", event.TotalRecords) //nolint:errcheck
		}
	case pipeline.EventRecordStart:
		prefix := ""
		if r.verbose {
			prefix = fmt.Sprintf("[%d/%d] ", event.RecordNum, event.TotalRecords)
		}
		fmt.Fprintf(r.out, "%sProcessing question: %s... (Model: %s)\n", //nolint:errcheck
			prefix, activity.Excerpt(event.Question, activity.ExcerptWidth), event.Model)
		if r.useSpinner {
			r.stop = spinner.Start(r.out, "Waiting for "+event.Model)
		}
	case pipeline.EventRecordComplete:
		r.stopSpinner()
		answer := event.Outcome.Text
		if event.Err != nil {
			answer = completion.NoAnswer
		}
		fmt.Fprintf(r.out, "\tOutput: %s...\n", activity.Excerpt(answer, activity.ExcerptWidth)) //nolint:errcheck
		if r.verbose {
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(r.out, "\tStatus: %s (%s, %v)\n", event.State, statusText(event.Outcome.Status), duration) //nolint:errcheck
			if event.Err != nil {
				fmt.Fprintf(r.out, "\tError: %v\n", event.Err) //nolint:errcheck
			}
		}
	case pipeline.EventSaved:
		fmt.Fprintf(r.out, "Auto-saved progress to %s\n", r.outputPath) //nolint:errcheck
	case pipeline.EventSaveFailed:
		fmt.Fprintf(r.errOut, "Failed to save progress to %s: %v\n", r.outputPath, event.Err) //nolint:errcheck
	case pipeline.EventRunComplete:
		if r.verbose {
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(r.out, "Run completed in %v\n", duration) //nolint:errcheck
		}
	}
}

// stopSpinner clears the spinner line, if one is drawn.
func (r *progressReporter) stopSpinner() {
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}

func statusText(status int) string {
	if status == 0 {
		return "no status"
	}
	return fmt.Sprintf("HTTP %d", status)
}
