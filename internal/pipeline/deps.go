package pipeline

import (
	"context"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/records"
)

//go:generate go tool mockgen -source=deps.go -destination=mocks_test.go -package=pipeline

// Completer asks a model for the answer to one question.
// Implemented by [completion.OpenRouterClient] and [completion.EchoClient].
type Completer interface {
	Complete(ctx context.Context, model, question string) completion.Outcome
}

// Recorder appends one entry to the activity log.
// Implemented by [activity.FileLogger] and [activity.NopLogger].
type Recorder interface {
	Record(entry activity.Entry)
}

// Persister overwrites the output file with the full sequence so far.
// Implemented by [records.FileStore].
type Persister interface {
	Save(recs []records.OutputRecord) error
}
