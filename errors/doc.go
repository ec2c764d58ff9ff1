/*
Package errors implements the error kinds used by every volreg component.

Each failure reported to a caller wraps exactly one root error created with
Register. The root error identifies the kind of the failure (authorization,
payment, ownership, not found, invalid input) while the wrapping layers carry
the details. Test the kind with the Is method:

	if errors.ErrOwnership.Is(err) {
		// caller does not hold the token
	}

A stack trace is attached once, at the innermost Wrap call.
*/
package errors
