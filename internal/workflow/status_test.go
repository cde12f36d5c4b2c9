package workflow

import (
	"errors"
	"testing"
)

func TestTransitionHappyPath(t *testing.T) {
	path := []struct {
		event Event
		want  Status
	}{
		{EventFinanceApprove, StatusWaitingOwnerApproval},
		{EventOwnerApprove, StatusPendingClientApproval},
		{EventClientApprove, StatusApproved},
		{EventAssignCrew, StatusPendingExecution},
		{EventStartExecution, StatusInProgress},
		{EventComplete, StatusCompleted},
	}

	current := StatusPendingFinanceReview
	for _, step := range path {
		next, err := Transition(current, step.event)
		if err != nil {
			t.Fatalf("Transition(%s, %s): %v", current, step.event, err)
		}
		if next != step.want {
			t.Fatalf("Transition(%s, %s) = %s, want %s", current, step.event, next, step.want)
		}
		current = next
	}

	if !IsTerminal(current) {
		t.Fatalf("expected %s to be terminal", current)
	}
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	cases := []struct {
		name  string
		from  Status
		event Event
	}{
		{"approve a client-rejected mission", StatusClientRejected, EventClientApprove},
		{"approve an owner-rejected mission", StatusOwnerRejected, EventOwnerApprove},
		{"client approves before owner", StatusWaitingOwnerApproval, EventClientApprove},
		{"complete before execution", StatusPendingExecution, EventComplete},
		{"assign crew before approval", StatusPendingClientApproval, EventAssignCrew},
		{"re-complete a completed mission", StatusCompleted, EventComplete},
		{"finance re-review after approval", StatusApproved, EventFinanceApprove},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.from, tc.event)
			if err == nil {
				t.Fatalf("Transition(%s, %s) allowed, got %s", tc.from, tc.event, next)
			}
			var invalid ErrInvalidTransition
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidTransition, got %T: %v", err, err)
			}
			if next != tc.from {
				t.Fatalf("status changed on rejected transition: %s -> %s", tc.from, next)
			}
		})
	}
}

func TestTransitionRejectsBothActionsAfterClientReject(t *testing.T) {
	rejected, err := Transition(StatusPendingClientApproval, EventClientReject)
	if err != nil || rejected != StatusClientRejected {
		t.Fatalf("client reject: got %s, %v", rejected, err)
	}
	if _, err := Transition(rejected, EventClientApprove); err == nil {
		t.Fatal("approve after reject should fail")
	}
	if _, err := Transition(rejected, EventClientReject); err == nil {
		t.Fatal("double reject should fail")
	}
}

func TestKnown(t *testing.T) {
	if !Known(StatusInProgress) {
		t.Fatal("in_progress should be known")
	}
	if Known(Status("flying")) {
		t.Fatal("arbitrary status should not be known")
	}
}
