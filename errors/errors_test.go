package errors

import (
	stdlib "errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	cases := map[string]struct {
		kind *Error
		err  error
		want bool
	}{
		"instance of the same error": {
			kind: ErrUnauthorized,
			err:  ErrUnauthorized,
			want: true,
		},
		"wrapped instance": {
			kind: ErrUnauthorized,
			err:  Wrap(ErrUnauthorized, "payload"),
			want: true,
		},
		"deeply wrapped instance": {
			kind: ErrNotFound,
			err:  Wrap(Wrap(ErrNotFound, "inner"), "outer"),
			want: true,
		},
		"different error kind": {
			kind: ErrNotFound,
			err:  ErrUnauthorized,
			want: false,
		},
		"stdlib error": {
			kind: ErrNotFound,
			err:  stdlib.New("not found"),
			want: false,
		},
		"nil error": {
			kind: ErrNotFound,
			err:  nil,
			want: false,
		},
		"nil kind matches nil error": {
			kind: nil,
			err:  nil,
			want: true,
		},
		"multi error that contains the kind": {
			kind: ErrState,
			err:  Append(ErrNotFound, Wrap(ErrState, "conflict")),
			want: true,
		},
		"multi error without the kind": {
			kind: ErrState,
			err:  Append(ErrNotFound, ErrUnauthorized),
			want: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.want {
				t.Fatalf("unexpected match result: %v", got)
			}
		})
	}
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":              {err: nil, want: 0},
		"root error":       {err: ErrNotFound, want: 3},
		"wrapped":          {err: Wrap(ErrNotFound, "x"), want: 3},
		"stdlib":           {err: stdlib.New("x"), want: ErrInternal.code},
		"wrapped stdlib":   {err: Wrap(stdlib.New("x"), "y"), want: ErrInternal.code},
		"custom extension": {err: Wrap(testErr, "z"), want: 9876},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want code %d, got %d", tc.want, got)
			}
		})
	}
}

var testErr = Register(9876, "test error")

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(ErrNotFound.code, "conflicting registration")
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("totally unexpected")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
	if got := Redact(err); got != ErrInternal {
		t.Fatalf("redacted panic must be internal, got %+v", got)
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("appending nils must produce nil, got %+v", err)
	}
	err := Append(ErrNotFound, nil, Wrap(ErrState, "x"))
	if !ErrNotFound.Is(err) || !ErrState.Is(err) {
		t.Fatalf("missing member kind in %+v", err)
	}
	if ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected member kind in %+v", err)
	}
}
