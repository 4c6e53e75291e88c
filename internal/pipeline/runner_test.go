package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/records"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		out  completion.Outcome
		want State
	}{
		{name: "answer", out: completion.Outcome{Text: "1. x", Status: 200}, want: StateAnswered},
		{name: "403 with sentinel", out: completion.Outcome{Text: completion.NoAnswer, Status: 403, Err: errors.New("denied")}, want: StateFlagged},
		{name: "403 with text", out: completion.Outcome{Text: "1. x", Status: 403}, want: StateFlagged},
		{name: "soft miss", out: completion.Outcome{Text: completion.NoAnswer, Status: 200}, want: StateFailedSoft},
		{name: "error with text", out: completion.Outcome{Text: "partial", Status: 500, Err: errors.New("boom")}, want: StateFailedSoft},
		{name: "transport", out: completion.Outcome{Text: completion.NoAnswer, Err: errors.New("refused")}, want: StateFailedSoft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.out))
		})
	}
}

func TestRunner_AnsweredRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	recorder := NewMockRecorder(ctrl)
	persister := NewMockPersister(ctrl)

	want := []records.OutputRecord{{Question: "What is the SVD?", Answer: "1. Decompose A=UΣV^T..."}}

	completer.EXPECT().Complete(gomock.Any(), DefaultModel, "What is the SVD?").
		Return(completion.Outcome{Text: "1. Decompose A=UΣV^T...", Status: http.StatusOK})
	recorder.EXPECT().Record(activity.Entry{
		Timestamp: fixedNow,
		Section:   DefaultSection,
		Question:  "What is the SVD?",
		Model:     DefaultModel,
		Status:    http.StatusOK,
	})
	persister.EXPECT().Save(want).Return(nil).Times(2)

	r := NewRunner(completer, recorder, persister, WithClock(fixedClock))
	res := r.Run(context.Background(), []records.InputRecord{{Question: "What is the SVD?"}})

	assert.Equal(t, want, res.Records)
	assert.Equal(t, []State{StatePersisted}, res.States)
	assert.Equal(t, 1, res.Answered)
	assert.Zero(t, res.Flagged)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.SaveErrors)
}

func TestRunner_AccessDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	recorder := NewMockRecorder(ctrl)
	persister := NewMockPersister(ctrl)

	denied := &completion.ProviderError{StatusCode: http.StatusForbidden, Message: "flagged"}
	completer.EXPECT().Complete(gomock.Any(), "anthropic/claude-3.5-sonnet", "Q").
		Return(completion.Outcome{Text: completion.NoAnswer, Status: http.StatusForbidden, Err: denied})

	var entry activity.Entry
	recorder.EXPECT().Record(gomock.Any()).Do(func(e activity.Entry) { entry = e })
	persister.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	res := NewRunner(completer, recorder, persister).
		Run(context.Background(), []records.InputRecord{{Question: "Q", Model: "anthropic/claude-3.5-sonnet"}})

	require.Len(t, res.Records, 1)
	assert.Equal(t, records.OutputRecord{Question: "Q", Answer: completion.NoAnswer, Flagged: true}, res.Records[0])
	assert.Equal(t, 1, res.Flagged)
	assert.Equal(t, http.StatusForbidden, entry.Status)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", entry.Model)
	assert.ErrorIs(t, entry.Err, denied)
}

func TestRunner_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	recorder := NewMockRecorder(ctrl)
	persister := NewMockPersister(ctrl)

	transportErr := errors.New("request failed: dial tcp: connection refused")
	completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(completion.Outcome{Text: "garbled", Err: transportErr})

	var entry activity.Entry
	recorder.EXPECT().Record(gomock.Any()).Do(func(e activity.Entry) { entry = e })
	persister.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	res := NewRunner(completer, recorder, persister).
		Run(context.Background(), []records.InputRecord{{Question: "Q"}})

	require.Len(t, res.Records, 1)
	assert.Equal(t, completion.NoAnswer, res.Records[0].Answer)
	assert.False(t, res.Records[0].Flagged)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, entry.Status)
	assert.Contains(t, entry.Line(), "Status: None | Error: request failed: dial tcp: connection refused")
}

func TestRunner_OutputAlignedWithInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	persister := NewMockPersister(ctrl)

	statuses := []int{200, 403, 0, 500, 200, 202, 429}
	var inputs []records.InputRecord
	for i := range statuses {
		inputs = append(inputs, records.InputRecord{Question: fmt.Sprintf("question %d", i)})
	}

	call := 0
	completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, q string) completion.Outcome {
			status := statuses[call]
			call++
			switch {
			case status == 200:
				return completion.Outcome{Text: "answer to " + q, Status: status}
			case status == 202:
				return completion.Outcome{Text: completion.NoAnswer, Status: status}
			default:
				return completion.Outcome{Text: completion.NoAnswer, Status: status, Err: errors.New("failed")}
			}
		}).Times(len(statuses))
	persister.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	res := NewRunner(completer, nil, persister).Run(context.Background(), inputs)

	require.Len(t, res.Records, len(inputs))
	require.Len(t, res.States, len(inputs))
	for i, in := range inputs {
		assert.Equal(t, in.Question, res.Records[i].Question)
		assert.Equal(t, statuses[i] == 403, res.Records[i].Flagged)
		if statuses[i] != 200 {
			assert.Equal(t, completion.NoAnswer, res.Records[i].Answer)
		}
	}
	assert.Equal(t, 2, res.Answered)
	assert.Equal(t, 1, res.Flagged)
	assert.Equal(t, 4, res.Failed)
}

func TestRunner_FlushCadence(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		inputs   int
		want     []int
	}{
		{name: "every record", interval: 1, inputs: 3, want: []int{1, 2, 3, 3}},
		{name: "every third record", interval: 3, inputs: 7, want: []int{3, 6, 7}},
		{name: "interval larger than input", interval: 10, inputs: 2, want: []int{2}},
		{name: "non-positive interval means every record", interval: 0, inputs: 2, want: []int{1, 2, 2}},
		{name: "no input still saves", interval: 1, inputs: 0, want: []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			completer := NewMockCompleter(ctrl)
			persister := NewMockPersister(ctrl)

			completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(completion.Outcome{Text: "1. ok", Status: 200}).Times(tt.inputs)

			var saved []int
			persister.EXPECT().Save(gomock.Any()).DoAndReturn(func(recs []records.OutputRecord) error {
				saved = append(saved, len(recs))
				return nil
			}).Times(len(tt.want))

			inputs := make([]records.InputRecord, tt.inputs)
			for i := range inputs {
				inputs[i].Question = fmt.Sprintf("q%d", i)
			}

			NewRunner(completer, activity.NopLogger{}, persister, WithAutoSaveInterval(tt.interval)).
				Run(context.Background(), inputs)

			assert.Equal(t, tt.want, saved)
		})
	}
}

func TestRunner_SaveFailureDoesNotStopRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	persister := NewMockPersister(ctrl)

	completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(completion.Outcome{Text: "1. ok", Status: 200}).Times(3)

	diskFull := errors.New("no space left on device")
	gomock.InOrder(
		persister.EXPECT().Save(gomock.Len(1)).Return(diskFull),
		persister.EXPECT().Save(gomock.Len(2)).Return(nil),
		persister.EXPECT().Save(gomock.Len(3)).Return(diskFull),
		persister.EXPECT().Save(gomock.Len(3)).Return(diskFull),
	)

	r := NewRunner(completer, nil, persister)
	var failures []error
	r.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventSaveFailed {
			failures = append(failures, e.Err)
		}
	})

	res := r.Run(context.Background(), []records.InputRecord{{Question: "a"}, {Question: "b"}, {Question: "c"}})

	require.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.SaveErrors)
	assert.Len(t, failures, 3)
	assert.Equal(t, []State{StatePersisted, StatePersisted, StateLogged}, res.States)
}

func TestRunner_ProgressEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	persister := NewMockPersister(ctrl)

	completer.EXPECT().Complete(gomock.Any(), "custom/model", "Q").
		Return(completion.Outcome{Text: "1. ok", Status: 200})
	persister.EXPECT().Save(gomock.Any()).Return(nil).Times(2)

	r := NewRunner(completer, nil, persister, WithDefaultModel("custom/model"))
	var events []ProgressEvent
	r.OnProgress(func(e ProgressEvent) { events = append(events, e) })

	r.Run(context.Background(), []records.InputRecord{{Question: "Q"}})

	var types []EventType
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []EventType{
		EventRunStart, EventRecordStart, EventRecordComplete, EventSaved, EventSaved, EventRunComplete,
	}, types)

	assert.Equal(t, 1, events[0].TotalRecords)
	assert.Equal(t, "custom/model", events[1].Model)
	assert.Equal(t, 1, events[1].RecordNum)
	assert.Equal(t, StateAnswered, events[2].State)
	assert.Equal(t, "1. ok", events[2].Outcome.Text)
	assert.Equal(t, 1, events[5].Persisted)
}

func TestRunner_WithFileCollaborators(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "data", "answers", "o4-mini.yaml")
	logPath := filepath.Join(dir, "logs", "answer.txt")

	logger, err := activity.NewFileLogger(logPath)
	require.NoError(t, err)

	r := NewRunner(completion.NewEchoClient(), logger, records.FileStore{Path: outPath},
		WithSection("Numerical Linear Algebra"))
	res := r.Run(context.Background(), []records.InputRecord{{Question: "What is the SVD?"}, {Question: "What is QR?"}})
	require.NoError(t, logger.Close())

	assert.Equal(t, 2, res.Answered)

	saved, err := records.LoadAnswers(outPath)
	require.NoError(t, err)
	assert.Equal(t, res.Records, saved)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "| Section: Numerical Linear Algebra | Q: What is the SVD?... | M: openai/o4-mini | Status: 200 | Error: None")
}
