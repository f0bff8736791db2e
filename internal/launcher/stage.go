package launcher

import "fmt"

// Stage is the last step an invocation completed.
type Stage int

const (
	StageStart Stage = iota
	StageConfigLoaded
	StageProfileResolved
	StageElevated
	StageDropped
	StageActed
)

var stageNames = [...]string{
	StageStart:           "start",
	StageConfigLoaded:    "config-loaded",
	StageProfileResolved: "profile-resolved",
	StageElevated:        "elevated",
	StageDropped:         "dropped",
	StageActed:           "acted",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError is returned by Run. Stage is the last step that succeeded
// before Err ended the invocation.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
