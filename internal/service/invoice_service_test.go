package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"crewops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newInvoiceTestService(t *testing.T) (InvoiceService, *memInvoiceRepo, *memAssignmentRepo, *fakeNotifier) {
	t.Helper()
	invoiceRepo := newMemInvoiceRepo()
	assignmentRepo := newMemAssignmentRepo()
	notifier := &fakeNotifier{}
	svc := NewInvoiceService(invoiceRepo, assignmentRepo, &memAuditRepo{}, fakeTxManager{}, notifier)
	svc.(*invoiceService).now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	}
	return svc, invoiceRepo, assignmentRepo, notifier
}

func seedAssignment(t *testing.T, repo *memAssignmentRepo, engagement string) model.Assignment {
	t.Helper()
	assignment := model.Assignment{
		ID:         uuid.New(),
		MissionID:  uuid.New(),
		UserID:     uuid.New(),
		Position:   model.PositionCaptain,
		Engagement: engagement,
		DayRate:    decimal.NewFromInt(800),
		Currency:   "EUR",
		StartDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(context.Background(), &assignment); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return assignment
}

func TestCreateSupplierInvoice(t *testing.T) {
	tests := []struct {
		name       string
		engagement string
		amount     string
		wantErr    string
	}{
		{name: "freelance with valid amount", engagement: model.EngagementFreelanceWithInvoice, amount: "1600.00"},
		{name: "plain freelance", engagement: model.EngagementFreelance, amount: "900"},
		{name: "internal crew refused", engagement: model.EngagementInternal, amount: "1600.00", wantErr: "freelance"},
		{name: "zero amount refused", engagement: model.EngagementFreelance, amount: "0", wantErr: "positive"},
		{name: "negative amount refused", engagement: model.EngagementFreelance, amount: "-50", wantErr: "positive"},
		{name: "unparseable amount refused", engagement: model.EngagementFreelance, amount: "lots", wantErr: "invalid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, assignmentRepo, _ := newInvoiceTestService(t)
			assignment := seedAssignment(t, assignmentRepo, tt.engagement)

			resp, err := svc.CreateSupplierInvoice(context.Background(), uuid.NewString(), CreateSupplierInvoiceRequest{
				AssignmentID: assignment.ID.String(),
				Amount:       tt.amount,
				Currency:     "EUR",
			})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSupplierInvoice: %v", err)
			}
			if resp.Status != model.InvoiceUploaded {
				t.Errorf("status = %q, want %q", resp.Status, model.InvoiceUploaded)
			}
			if resp.MissionID != assignment.MissionID.String() {
				t.Errorf("mission id = %q, want %q", resp.MissionID, assignment.MissionID)
			}
		})
	}
}

func TestCreateSupplierInvoiceUnknownAssignment(t *testing.T) {
	svc, _, _, _ := newInvoiceTestService(t)
	_, err := svc.CreateSupplierInvoice(context.Background(), uuid.NewString(), CreateSupplierInvoiceRequest{
		AssignmentID: uuid.NewString(),
		Amount:       "100",
		Currency:     "EUR",
	})
	if err == nil || !strings.Contains(err.Error(), "assignment not found") {
		t.Fatalf("error = %v, want assignment not found", err)
	}
}

func TestReviewSupplierInvoice(t *testing.T) {
	svc, _, assignmentRepo, notifier := newInvoiceTestService(t)
	assignment := seedAssignment(t, assignmentRepo, model.EngagementFreelanceWithInvoice)
	reviewer := uuid.NewString()

	created, err := svc.CreateSupplierInvoice(context.Background(), reviewer, CreateSupplierInvoiceRequest{
		AssignmentID: assignment.ID.String(),
		Amount:       "1600.00",
		Currency:     "EUR",
	})
	if err != nil {
		t.Fatalf("CreateSupplierInvoice: %v", err)
	}

	reviewed, err := svc.UpdateSupplierInvoiceStatus(context.Background(), reviewer, created.ID, UpdateInvoiceStatusRequest{
		Status: model.InvoiceApproved,
	})
	if err != nil {
		t.Fatalf("UpdateSupplierInvoiceStatus: %v", err)
	}
	if reviewed.Status != model.InvoiceApproved {
		t.Errorf("status = %q, want approved", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != reviewer {
		t.Errorf("reviewed_by = %v, want %s", reviewed.ReviewedBy, reviewer)
	}
	if reviewed.ReviewedAt == nil {
		t.Error("reviewed_at not set")
	}
	if len(notifier.broadcasts) != 1 || notifier.broadcasts[0] != model.NotifInvoiceReviewed {
		t.Errorf("broadcasts = %v, want one invoice_reviewed", notifier.broadcasts)
	}
}

// Approved and rejected invoices are terminal: a second review must be
// refused and must not overwrite the first decision.
func TestReviewSupplierInvoiceTerminal(t *testing.T) {
	for _, first := range []string{model.InvoiceApproved, model.InvoiceRejected} {
		t.Run(first, func(t *testing.T) {
			svc, invoiceRepo, assignmentRepo, _ := newInvoiceTestService(t)
			assignment := seedAssignment(t, assignmentRepo, model.EngagementFreelance)
			reviewer := uuid.NewString()

			created, err := svc.CreateSupplierInvoice(context.Background(), reviewer, CreateSupplierInvoiceRequest{
				AssignmentID: assignment.ID.String(),
				Amount:       "500",
				Currency:     "EUR",
			})
			if err != nil {
				t.Fatalf("CreateSupplierInvoice: %v", err)
			}
			if _, err := svc.UpdateSupplierInvoiceStatus(context.Background(), reviewer, created.ID, UpdateInvoiceStatusRequest{Status: first}); err != nil {
				t.Fatalf("first review: %v", err)
			}

			second := model.InvoiceRejected
			if first == model.InvoiceRejected {
				second = model.InvoiceApproved
			}
			_, err = svc.UpdateSupplierInvoiceStatus(context.Background(), reviewer, created.ID, UpdateInvoiceStatusRequest{Status: second})
			if err == nil || !strings.Contains(err.Error(), "already "+first) {
				t.Fatalf("second review error = %v, want already %s", err, first)
			}

			stored, err := invoiceRepo.FindByID(context.Background(), uuid.MustParse(created.ID))
			if err != nil {
				t.Fatalf("reload invoice: %v", err)
			}
			if stored.Status != first {
				t.Errorf("stored status = %q, want first decision %q preserved", stored.Status, first)
			}
		})
	}
}

// Only approved invoices count toward an assignment's paid amount.
func TestSumApprovedByAssignment(t *testing.T) {
	svc, invoiceRepo, assignmentRepo, _ := newInvoiceTestService(t)
	assignment := seedAssignment(t, assignmentRepo, model.EngagementFreelanceWithInvoice)
	reviewer := uuid.NewString()

	amounts := []struct {
		amount  string
		approve bool
	}{
		{"400", true},
		{"250.50", true},
		{"999", false},
	}
	for _, a := range amounts {
		created, err := svc.CreateSupplierInvoice(context.Background(), reviewer, CreateSupplierInvoiceRequest{
			AssignmentID: assignment.ID.String(),
			Amount:       a.amount,
			Currency:     "EUR",
		})
		if err != nil {
			t.Fatalf("CreateSupplierInvoice: %v", err)
		}
		status := model.InvoiceRejected
		if a.approve {
			status = model.InvoiceApproved
		}
		if _, err := svc.UpdateSupplierInvoiceStatus(context.Background(), reviewer, created.ID, UpdateInvoiceStatusRequest{Status: status}); err != nil {
			t.Fatalf("review: %v", err)
		}
	}

	paid, err := invoiceRepo.SumApprovedByAssignment(context.Background(), assignment.ID)
	if err != nil {
		t.Fatalf("SumApprovedByAssignment: %v", err)
	}
	if want := decimal.RequireFromString("650.50"); !paid.Equal(want) {
		t.Errorf("paid = %s, want %s", paid, want)
	}
}
