package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies the errors of Counters
type Kind int

const (
	// NotFound the counter does not exist
	NotFound Kind = iota + 1
	// DuplicateName the counter already exists
	DuplicateName
	// IllegalName the counter name is rejected by the name rule
	IllegalName
	// Overflow the counter can not be incremented without overflowing
	Overflow
	// Internal any other failure
	Internal
)

var kindNames = map[Kind]string{
	NotFound:      "NotFound",
	DuplicateName: "DuplicateName",
	IllegalName:   "IllegalName",
	Overflow:      "Overflow",
	Internal:      "Internal",
}

var kindStatus = map[Kind]int{
	NotFound:      http.StatusNotFound,
	DuplicateName: http.StatusBadRequest,
	IllegalName:   http.StatusBadRequest,
	Overflow:      http.StatusInsufficientStorage,
	Internal:      http.StatusInternalServerError,
}

func (p Kind) String() string {
	if name, ok := kindNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(p))
}

// Error is the error returned by Counters
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

// sentinel errors for errors.Is, compared by Kind
var (
	ErrNotFound      = &Error{Kind: NotFound}
	ErrDuplicateName = &Error{Kind: DuplicateName}
	ErrIllegalName   = &Error{Kind: IllegalName}
	ErrOverflow      = &Error{Kind: Overflow}
)

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: cause}
}

func (p *Error) Error() string {
	if p.Msg == "" {
		return p.Kind.String()
	}
	return p.Msg
}

// Unwrap returns the cause of the error
func (p *Error) Unwrap() error {
	return p.cause
}

// Is reports whether target is an *Error of the same Kind
func (p *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == p.Kind
}

// HTTPStatus returns the http status code of the error
func (p *Error) HTTPStatus() int {
	if status, ok := kindStatus[p.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsError converts err to *Error, errors of other types are Internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Msg: err.Error(), cause: err}
}
