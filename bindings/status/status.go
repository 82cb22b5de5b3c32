package status

import (
	"errors"
	"fmt"

	"github.com/breez/lnbind/bindings/codes"
)

type Status struct {
	Code    codes.Code
	Message string
}

func New(c codes.Code, msg string) *Status {
	return &Status{Code: c, Message: msg}
}

func Newf(c codes.Code, format string, a ...interface{}) *Status {
	return New(c, fmt.Sprintf(format, a...))
}

// Errorf returns an error carrying a status with the given code.
func Errorf(c codes.Code, format string, a ...interface{}) error {
	return Newf(c, format, a...).Err()
}

// FromError returns the status carried by err. If err does not carry a
// status, a status with codes.Unknown and the error's message is returned
// and ok is false.
func FromError(err error) (s *Status, ok bool) {
	if err == nil {
		return nil, true
	}
	var se interface {
		BindingStatus() *Status
	}
	if errors.As(err, &se) {
		return se.BindingStatus(), true
	}
	return New(codes.Unknown, err.Error()), false
}

// Convert is a convenience function which removes the need to handle the
// boolean return value from FromError.
func Convert(err error) *Status {
	s, _ := FromError(err)
	return s
}

// Code returns the status code of err, codes.OK for a nil error.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return Convert(err).Code
}

func (s *Status) Err() error {
	if s.Code == codes.OK {
		return nil
	}
	return &Error{s: s}
}

func (s *Status) String() string {
	return fmt.Sprintf("%s: code = %d (%s) desc = %s", s.Code.Family(), int32(s.Code), s.Code, s.Message)
}

type Error struct {
	s *Status
}

func (e *Error) Error() string {
	return e.s.String()
}

func (e *Error) BindingStatus() *Status {
	return e.s
}

// Is reports whether target is a status error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.s.Code == e.s.Code
}
