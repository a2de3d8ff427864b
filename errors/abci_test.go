package errors

import (
	"io"
	"testing"
)

// coded is a foreign error type exposing its own code.
type coded struct{}

func (coded) ABCICode() uint32 { return 999 }
func (coded) Error() string    { return "coded" }

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"no error":                      {err: nil, wantCode: 0, wantLog: ""},
		"typed nil":                     {err: (*Error)(nil), wantCode: 0, wantLog: ""},
		"root error":                    {err: ErrNotFound, wantCode: 3, wantLog: "not found"},
		"wrapped twice":                 {err: Wrap(Wrap(ErrNotFound, "pool"), "release"), wantCode: 3, wantLog: "release: pool: not found"},
		"foreign code":                  {err: coded{}, wantCode: 999, wantLog: "coded"},
		"wrapped foreign code":          {err: Wrap(coded{}, "call"), wantCode: 999, wantLog: "call: coded"},
		"plain error is hidden":         {err: io.EOF, wantCode: 1, wantLog: "internal error"},
		"wrapped plain error is hidden": {err: Wrap(io.EOF, "read"), wantCode: 1, wantLog: "internal error"},
		"plain error in debug":          {err: io.EOF, debug: true, wantCode: 1, wantLog: "EOF"},
		"wrapped plain error in debug":  {err: Wrap(io.EOF, "read"), debug: true, wantCode: 1, wantLog: "read: EOF"},
		"recovered panic is hidden":     {err: Wrap(ErrPanic, "secret"), wantCode: 1, wantLog: "internal error"},
		"recovered panic in debug":      {err: Wrap(ErrPanic, "secret"), debug: true, wantCode: 111222, wantLog: "secret: panic"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want code %d, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want log %q, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIErrorRestoresRoot(t *testing.T) {
	cases := map[string]struct {
		err      error
		wantRoot *Error
	}{
		"success":      {err: nil, wantRoot: nil},
		"root error":   {err: ErrUnauthorized, wantRoot: ErrUnauthorized},
		"wrapped root": {err: Wrap(ErrNotFound, "pool"), wantRoot: ErrNotFound},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, false)
			got := ABCIError(code, log)
			if !tc.wantRoot.Is(got) {
				t.Fatalf("want %v, got %v", tc.wantRoot, got)
			}
			if got != nil && got.Error() != log {
				t.Fatalf("want log %q, got %q", log, got.Error())
			}
		})
	}

	err := ABCIError(internalABCICode, internalABCILog)
	if err == nil || err.Error() != internalABCILog {
		t.Fatalf("unexpected internal error: %v", err)
	}
	if ErrNotFound.Is(ABCIError(424242, "unknown")) {
		t.Fatal("unregistered code matched a root")
	}
}
