package publisher

import "fmt"

// RunStage identifies the pipeline stage a failure happened in. Every failure
// is terminal for the run; there is no retry or rollback.
type RunStage string

const (
	StageLock     RunStage = "lock"
	StageGenerate RunStage = "generate"
	StageValidate RunStage = "validate"
	StageSync     RunStage = "sync"
)

// RunError tags a pipeline failure with its stage so a failed run reports
// exactly where it stopped.
type RunError struct {
	Stage RunStage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newRunError(stage RunStage, err error) *RunError {
	return &RunError{Stage: stage, Err: err}
}
