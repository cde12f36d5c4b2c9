package workflow

import "fmt"

// Status is the lifecycle state of a mission.
type Status string

const (
	StatusPendingFinanceReview  Status = "pending_finance_review"
	StatusWaitingOwnerApproval  Status = "waiting_owner_approval"
	StatusPendingClientApproval Status = "pending_client_approval"
	StatusApproved              Status = "approved"
	StatusClientRejected        Status = "client_rejected"
	StatusOwnerRejected         Status = "owner_rejected"
	StatusPendingExecution      Status = "pending_execution"
	StatusInProgress            Status = "in_progress"
	StatusCompleted             Status = "completed"
)

// ValidationStatus is the final back-office validation state of a mission,
// also reused for crew profile validation by HR.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

// Event is a workflow action that may advance a mission's status.
type Event string

const (
	EventFinanceApprove Event = "finance_approve"
	EventOwnerApprove   Event = "owner_approve"
	EventOwnerReject    Event = "owner_reject"
	EventClientApprove  Event = "client_approve"
	EventClientReject   Event = "client_reject"
	EventAssignCrew     Event = "assign_crew"
	EventStartExecution Event = "start_execution"
	EventComplete       Event = "complete"
)

// ErrInvalidTransition is returned by Transition for moves the table does not allow.
type ErrInvalidTransition struct {
	From  Status
	Event Event
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed from status %q", e.Event, e.From)
}

// transitions is the authoritative table. A status missing an event means the
// event is illegal from that status. Rejected and completed missions accept
// nothing, they are terminal.
var transitions = map[Status]map[Event]Status{
	StatusPendingFinanceReview: {
		EventFinanceApprove: StatusWaitingOwnerApproval,
	},
	StatusWaitingOwnerApproval: {
		EventOwnerApprove: StatusPendingClientApproval,
		EventOwnerReject:  StatusOwnerRejected,
	},
	StatusPendingClientApproval: {
		EventClientApprove: StatusApproved,
		EventClientReject:  StatusClientRejected,
	},
	StatusApproved: {
		EventAssignCrew: StatusPendingExecution,
	},
	StatusPendingExecution: {
		EventStartExecution: StatusInProgress,
	},
	StatusInProgress: {
		EventComplete: StatusCompleted,
	},
}

// Transition applies event to current and returns the resulting status, or
// ErrInvalidTransition when the move is not in the table.
func Transition(current Status, event Event) (Status, error) {
	next, ok := transitions[current][event]
	if !ok {
		return current, ErrInvalidTransition{From: current, Event: event}
	}
	return next, nil
}

// IsTerminal reports whether a mission can no longer change status.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusClientRejected || s == StatusOwnerRejected
}

// Known reports whether s is one of the defined mission statuses.
func Known(s Status) bool {
	switch s {
	case StatusPendingFinanceReview, StatusWaitingOwnerApproval, StatusPendingClientApproval,
		StatusApproved, StatusClientRejected, StatusOwnerRejected,
		StatusPendingExecution, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
