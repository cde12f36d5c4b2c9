package workflow

// StepStatus is the displayed state of one workflow step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepBlocked    StepStatus = "blocked"
)

// Step keys, in canonical order.
const (
	StepMissionRequest    = "mission_request"
	StepQuote             = "quote"
	StepClientApproval    = "client_approval"
	StepCrewAssignments   = "crew_assignments"
	StepContractsOrders   = "contracts_orders"
	StepMissionOngoing    = "mission_ongoing"
	StepFreelanceInvoices = "freelance_invoices"
	StepFinalValidation   = "final_validation"
)

// Step is one entry of the derived workflow view.
type Step struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

// Snapshot is the loaded aggregate the step view is derived from. It is built
// by the caller from storage; the derivation itself never touches storage so
// it stays trivially unit-testable.
type Snapshot struct {
	MissionExists    bool
	MissionStatus    Status
	ValidationStatus ValidationStatus
	HasQuote         bool
	QuoteApproved    bool
	AssignmentCount  int
	InvoiceCount     int
	ApprovedInvoices int
}

// DeriveSteps computes the eight workflow steps from a snapshot. Completion is
// derived from presence of related records, not from a persisted step field,
// so the view is always consistent with whatever data actually exists.
func DeriveSteps(s Snapshot) []Step {
	steps := []Step{
		{Key: StepMissionRequest, Label: "Mission Request"},
		{Key: StepQuote, Label: "Quote"},
		{Key: StepClientApproval, Label: "Client Approval"},
		{Key: StepCrewAssignments, Label: "Crew Assignments"},
		{Key: StepContractsOrders, Label: "Contracts & Orders"},
		{Key: StepMissionOngoing, Label: "Mission Ongoing"},
		{Key: StepFreelanceInvoices, Label: "Freelance Invoices"},
		{Key: StepFinalValidation, Label: "Final Validation"},
	}

	for i := range steps {
		steps[i].Status = StepPending
	}

	if s.MissionExists {
		steps[0].Status = StepCompleted
	}

	switch {
	case s.HasQuote && s.QuoteApproved:
		steps[1].Status = StepCompleted
		steps[2].Status = StepCompleted
	case s.HasQuote:
		steps[1].Status = StepInProgress
		steps[2].Status = StepInProgress
	}

	if s.AssignmentCount > 0 {
		steps[3].Status = StepCompleted
	}

	// Contracts require an approved quote. Assignments made before the client
	// signed off leave this step blocked rather than silently pending.
	switch {
	case s.QuoteApproved && s.AssignmentCount > 0:
		steps[4].Status = StepCompleted
	case s.AssignmentCount > 0 && !s.QuoteApproved:
		steps[4].Status = StepBlocked
	}

	if s.MissionStatus == StatusInProgress {
		steps[5].Status = StepCompleted
	}

	switch {
	case s.InvoiceCount > 0 && s.ApprovedInvoices == s.InvoiceCount:
		steps[6].Status = StepCompleted
	case s.InvoiceCount > 0:
		steps[6].Status = StepInProgress
	}

	if s.ValidationStatus == ValidationValidated {
		steps[7].Status = StepCompleted
	}

	return steps
}

// Progress returns the overall completion percentage of a step list.
func Progress(steps []Step) float64 {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, st := range steps {
		if st.Status == StepCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(steps)) * 100
}
