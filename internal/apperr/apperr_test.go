package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"invalid state", InvalidState("session is %s", "GRADED"), CodeInvalidState},
		{"not found", NotFound("session missing"), CodeNotFound},
		{"scoring unavailable", ScoringUnavailable(errors.New("timeout")), CodeScoringUnavailable},
		{"wrapped", fmt.Errorf("reopen: %w", InvalidState("not graded")), CodeInvalidState},
		{"plain error", errors.New("db down"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := fmt.Errorf("finalize: %w", AlreadyGraded("answer %s", "abc"))

	if !errors.Is(err, &Error{Code: CodeAlreadyGraded}) {
		t.Error("errors.Is should match on equal code")
	}
	if errors.Is(err, &Error{Code: CodeNotFound}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestScoringUnavailableUnwraps(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := ScoringUnavailable(cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}
