package dispatch

import "fmt"

// Error wraps any backing-store failure. The engine never retries; callers
// that want resilience wrap calls themselves.
type Error struct {
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	return "dispatch error: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Msg: fmt.Sprintf("%s: %v", op, err), Err: err}
}
