package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned when the caller lacks the required role,
	// for example a non admin changing a configuration value or a non owner
	// changing token visibility.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned for unknown token, item or registry
	// references.
	ErrNotFound = Register(3, "not found")

	// ErrPayment is returned when a supplied amount does not match the
	// required amount exactly, or cannot be covered by the payer wallet.
	ErrPayment = Register(4, "payment")

	// ErrOwnership is returned when the caller is not the current token
	// owner, or a token is not held where it is expected to be.
	ErrOwnership = Register(5, "ownership")

	// ErrInput stands for malformed or out of range input, such as a non
	// positive listing price.
	ErrInput = Register(6, "invalid input")

	// ErrDuplicate is returned when a unique index constraint is violated.
	ErrDuplicate = Register(7, "duplicate")

	// ErrHuman is returned when a code path is reached that should never be
	// reached if the code was written as expected.
	ErrHuman = Register(8, "coding error")

	// ErrState is returned when an object is in an invalid state.
	ErrState = Register(9, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(10, "invalid type")

	// ErrCurrency is returned when amounts of different currencies are
	// combined.
	ErrCurrency = Register(11, "invalid currency")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(12, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(13, "database")

	// ErrIteratorDone is returned by iterators when there are no more
	// elements.
	ErrIteratorDone = Register(14, "iterator done")

	// ErrPanic is only set when we recover from a panic.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// This function ensures that no error code is used twice. Attempt to reuse
// an error code results in panic. Use it only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness.
var usedCodes = map[uint32]*Error{
	1: nil, // Reserved for errors that do not wrap a registered root.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and reporting a stable error kind to
// the caller.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the registered code of this root error.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		return isNilErr(err)
	}

	for {
		if err == kind {
			return true
		}

		// Multi errors are of a kind if any of the contained errors is.
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				if kind.Is(e) {
					return true
				}
			}
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Unwrap allows the standard library errors package to see through.
func (e *wrappedError) Unwrap() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// Kind returns the registered root error of given error or nil if it does
// not wrap any.
func Kind(err error) *Error {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e
		case unpacker:
			for _, inner := range e.Unpack() {
				if k := Kind(inner); k != nil {
					return k
				}
			}
			return nil
		case causer:
			err = e.Cause()
		default:
			return nil
		}
	}
	return nil
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type causer interface {
		Cause() error
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
