package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{"start", SessionStatusNotStarted, SessionStatusInProgress, true},
		{"submit", SessionStatusInProgress, SessionStatusSubmitted, true},
		{"auto-grade partial", SessionStatusSubmitted, SessionStatusGrading, true},
		{"auto-grade full", SessionStatusSubmitted, SessionStatusGraded, true},
		{"finalize", SessionStatusGrading, SessionStatusGraded, true},
		{"reopen", SessionStatusGraded, SessionStatusGrading, true},

		{"skip submit", SessionStatusInProgress, SessionStatusGraded, false},
		{"skip grading backward", SessionStatusGrading, SessionStatusSubmitted, false},
		{"resubmit", SessionStatusSubmitted, SessionStatusInProgress, false},
		{"graded to in progress", SessionStatusGraded, SessionStatusInProgress, false},
		{"graded to submitted", SessionStatusGraded, SessionStatusSubmitted, false},
		{"self loop", SessionStatusGrading, SessionStatusGrading, false},
		{"not started to submitted", SessionStatusNotStarted, SessionStatusSubmitted, false},
		{"unknown status", SessionStatus("BOGUS"), SessionStatusGraded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSessionStatusActive(t *testing.T) {
	active := []SessionStatus{SessionStatusNotStarted, SessionStatusInProgress}
	inactive := []SessionStatus{SessionStatusSubmitted, SessionStatusGrading, SessionStatusGraded}

	for _, s := range active {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range inactive {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestViolationTypeValid(t *testing.T) {
	for _, v := range []ViolationType{ViolationTabSwitch, ViolationFullscreenExit, ViolationCopyPaste} {
		if !v.Valid() {
			t.Errorf("%s should be valid", v)
		}
	}
	if ViolationType("DEVTOOLS_OPEN").Valid() {
		t.Error("unknown violation type should be invalid")
	}
}
