package pipeline

import (
	"net/http"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
)

// State is the lifecycle position of a single record.
type State string

const (
	StatePending    State = "pending"
	StateRequested  State = "requested"
	StateAnswered   State = "answered"
	StateFlagged    State = "flagged"
	StateFailedSoft State = "failed_soft"
	StateLogged     State = "logged"
	StatePersisted  State = "persisted"
)

// Classify maps a completion outcome to its terminal answer state.
// Access denial wins over every other signal.
func Classify(out completion.Outcome) State {
	switch {
	case out.Status == http.StatusForbidden:
		return StateFlagged
	case out.Err != nil, out.Text == completion.NoAnswer:
		return StateFailedSoft
	default:
		return StateAnswered
	}
}
