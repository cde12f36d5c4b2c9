package workflow

import "testing"

func stepByKey(t *testing.T, steps []Step, key string) Step {
	t.Helper()
	for _, s := range steps {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("step %q not found", key)
	return Step{}
}

func TestDeriveStepsBareMission(t *testing.T) {
	steps := DeriveSteps(Snapshot{
		MissionExists:    true,
		MissionStatus:    StatusPendingFinanceReview,
		ValidationStatus: ValidationPending,
	})

	if len(steps) != 8 {
		t.Fatalf("expected 8 steps, got %d", len(steps))
	}
	if steps[0].Status != StepCompleted {
		t.Fatalf("mission request step = %s, want completed", steps[0].Status)
	}
	for _, s := range steps[1:] {
		if s.Status != StepPending {
			t.Fatalf("step %s = %s, want pending", s.Key, s.Status)
		}
	}
	if got := Progress(steps); got != 12.5 {
		t.Fatalf("progress = %v, want 12.5", got)
	}
}

func TestDeriveStepsUnapprovedQuoteIsInProgress(t *testing.T) {
	steps := DeriveSteps(Snapshot{
		MissionExists: true,
		MissionStatus: StatusPendingClientApproval,
		HasQuote:      true,
		QuoteApproved: false,
	})

	if got := stepByKey(t, steps, StepQuote).Status; got != StepInProgress {
		t.Fatalf("quote step = %s, want in_progress", got)
	}
	// an unapproved quote must never complete the client approval step
	if got := stepByKey(t, steps, StepClientApproval).Status; got == StepCompleted {
		t.Fatal("client approval reported completed with client_approved=false")
	}
}

func TestDeriveStepsContractsCompleted(t *testing.T) {
	steps := DeriveSteps(Snapshot{
		MissionExists:   true,
		MissionStatus:   StatusPendingExecution,
		HasQuote:        true,
		QuoteApproved:   true,
		AssignmentCount: 1,
	})

	if got := stepByKey(t, steps, StepContractsOrders).Status; got != StepCompleted {
		t.Fatalf("contracts step = %s, want completed", got)
	}
	if got := stepByKey(t, steps, StepClientApproval).Status; got != StepCompleted {
		t.Fatalf("client approval step = %s, want completed", got)
	}
}

func TestDeriveStepsContractsBlockedWithoutApprovedQuote(t *testing.T) {
	steps := DeriveSteps(Snapshot{
		MissionExists:   true,
		MissionStatus:   StatusPendingClientApproval,
		HasQuote:        true,
		QuoteApproved:   false,
		AssignmentCount: 2,
	})

	if got := stepByKey(t, steps, StepContractsOrders).Status; got != StepBlocked {
		t.Fatalf("contracts step = %s, want blocked", got)
	}
}

func TestDeriveStepsInvoices(t *testing.T) {
	partial := DeriveSteps(Snapshot{MissionExists: true, InvoiceCount: 3, ApprovedInvoices: 1})
	if got := stepByKey(t, partial, StepFreelanceInvoices).Status; got != StepInProgress {
		t.Fatalf("partially approved invoices = %s, want in_progress", got)
	}

	all := DeriveSteps(Snapshot{MissionExists: true, InvoiceCount: 3, ApprovedInvoices: 3})
	if got := stepByKey(t, all, StepFreelanceInvoices).Status; got != StepCompleted {
		t.Fatalf("all invoices approved = %s, want completed", got)
	}

	none := DeriveSteps(Snapshot{MissionExists: true})
	if got := stepByKey(t, none, StepFreelanceInvoices).Status; got != StepPending {
		t.Fatalf("no invoices = %s, want pending", got)
	}
}

// Completing steps in the canonical order must never decrease progress.
func TestProgressMonotonic(t *testing.T) {
	snapshots := []Snapshot{
		{MissionExists: true},
		{MissionExists: true, HasQuote: true},
		{MissionExists: true, HasQuote: true, QuoteApproved: true},
		{MissionExists: true, HasQuote: true, QuoteApproved: true, AssignmentCount: 1},
		{MissionExists: true, HasQuote: true, QuoteApproved: true, AssignmentCount: 1, MissionStatus: StatusInProgress},
		{MissionExists: true, HasQuote: true, QuoteApproved: true, AssignmentCount: 1, MissionStatus: StatusInProgress, InvoiceCount: 2, ApprovedInvoices: 2},
		{MissionExists: true, HasQuote: true, QuoteApproved: true, AssignmentCount: 1, MissionStatus: StatusInProgress, InvoiceCount: 2, ApprovedInvoices: 2, ValidationStatus: ValidationValidated},
	}

	prev := -1.0
	for i, snap := range snapshots {
		got := Progress(DeriveSteps(snap))
		if got < prev {
			t.Fatalf("progress decreased at snapshot %d: %v -> %v", i, prev, got)
		}
		prev = got
	}
	if prev != 100 {
		t.Fatalf("final progress = %v, want 100", prev)
	}
}
