package errs

import "testing"

func TestExitCodes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind Kind
		want int
	}{
		{KindGeneric, 1},
		{KindConfig, 3},
		{KindCredential, 3},
		{KindAPI, 4},
		{KindTimeout, 5},
		{KindValidation, 6},
		{KindQuery, 6},
		{KindIO, 1},
	}
	for _, tc := range cases {
		if got := tc.kind.ExitCode(); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.kind, got, tc.want)
		}
	}
}

func TestExitCodeUnwrapsWrappedError(t *testing.T) {
	t.Parallel()
	wrapped := Wrap(KindTimeout, "task t1 timed out", nil)
	if got := ExitCode(wrapped); got != 5 {
		t.Fatalf("got %d", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("got %d", got)
	}
}
