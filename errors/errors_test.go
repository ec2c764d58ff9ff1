package errors

import (
	stdlib "errors"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrPayment,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrOwnership,
			b:      errors.Wrap(ErrOwnership, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrOwnership,
			b:      errors.Wrap(ErrPayment, "gone"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrUnauthorized,
			b:      stdlib.New("unauthorized"),
			wantIs: false,
		},
		"doubly wrapped error": {
			a:      ErrPayment,
			b:      Wrap(Wrapf(ErrPayment, "want %d", 2), "mint"),
			wantIs: true,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*wrappedError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrInput,
			wantIs: false,
		},
		"field error": {
			a:      ErrInput,
			b:      Field("Price", ErrInput, "must be positive"),
			wantIs: true,
		},
		"multi error contains": {
			a:      ErrCurrency,
			b:      Append(ErrInput, ErrCurrency),
			wantIs: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - want %v, got %v", tc.wantIs, got)
			}
		})
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registering the same code twice must panic")
		}
	}()
	Register(ErrNotFound.Code(), "again")
}

func TestWrapEmpty(t *testing.T) {
	if err := Wrap(nil, "wrapping <nil>"); err != nil {
		t.Fatal(err)
	}
}

func TestKind(t *testing.T) {
	cases := map[string]struct {
		err  error
		want *Error
	}{
		"root":        {err: ErrPayment, want: ErrPayment},
		"wrapped":     {err: Wrap(ErrOwnership, "not yours"), want: ErrOwnership},
		"field":       {err: Field("Owner", ErrInput, ""), want: ErrInput},
		"multi first": {err: Append(Wrap(ErrNotFound, "a"), ErrInput), want: ErrNotFound},
		"stdlib":      {err: stdlib.New("x"), want: nil},
		"nil":         {err: nil, want: nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := run()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Append(nil, ErrInput); err != ErrInput {
		t.Fatalf("single error must be returned as is, got %v", err)
	}
	err := Append(ErrInput, Append(ErrCurrency, ErrOverflow))
	m, ok := err.(multiErr)
	if !ok || len(m) != 3 {
		t.Fatalf("want flattened multi error of 3, got %#v", err)
	}
}

func TestFieldErrors(t *testing.T) {
	err := AppendField(nil, "MintPrice", ErrInput)
	err = AppendField(err, "Owner", ErrInput)
	err = AppendField(err, "BaseURI", nil)

	if got := FieldErrors(err, "MintPrice"); len(got) != 1 {
		t.Fatalf("want one MintPrice error, got %d", len(got))
	}
	if got := FieldErrors(err, "BaseURI"); len(got) != 0 {
		t.Fatalf("want no BaseURI error, got %d", len(got))
	}
}
