package cloud

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage identifies the pipeline step a failure came from.
type Stage int

const (
	// StageDataAccess covers a missing or malformed input csv.
	StageDataAccess Stage = iota + 1
	// StageResourceLoad covers a missing or unparsable font.
	StageResourceLoad
	// StageLayout covers failures of the word-cloud layout engine.
	StageLayout
	// StageWrite covers failures to persist the image.
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageDataAccess:
		return "data access"
	case StageResourceLoad:
		return "resource load"
	case StageLayout:
		return "layout"
	case StageWrite:
		return "write"
	}
	return "unknown"
}

// ErrEmptyMapping is returned when there are no labels to lay out.
var ErrEmptyMapping = errors.New("frequency mapping is empty")

// Error is a pipeline failure tagged with the stage that produced it.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf reports the stage of a pipeline error, or 0 if err did not come
// from the pipeline.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return 0
}
