package chatty

import (
	"errors"
	"fmt"
)

var (
	ErrParse                 = errors.New("parse error")
	ErrIncompleteLine        = errors.New("incomplete line")
	ErrMissingBeginTimestamp = errors.New("timestamped line before any log session marker")
	ErrMissingJoinChannel    = errors.New("message before any channel join")
	ErrTimestamp             = errors.New("invalid timestamp")
	ErrSink                  = errors.New("sink rejected message")
)

// LineError is a fatal failure tied to a 1-based input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type sinkError struct {
	err error
}

func (e *sinkError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSink, e.err)
}

func (e *sinkError) Unwrap() []error {
	return []error{ErrSink, e.err}
}

// Kind returns the taxonomy sentinel err belongs to, or nil when err is not
// one of the driver's fatal kinds.
func Kind(err error) error {
	for _, kind := range []error{
		ErrParse,
		ErrIncompleteLine,
		ErrMissingBeginTimestamp,
		ErrMissingJoinChannel,
		ErrTimestamp,
		ErrSink,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// LineOf returns the line number carried by err, or 0.
func LineOf(err error) int {
	var le *LineError
	if errors.As(err, &le) {
		return le.Line
	}
	return 0
}
