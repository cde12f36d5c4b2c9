package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crewops/internal/model"
	"crewops/internal/workflow"

	"github.com/google/uuid"
)

type missionFixture struct {
	svc         MissionService
	missionRepo *memMissionRepo
	clientRepo  *memClientRepo
	auditRepo   *memAuditRepo
	client      model.Client
}

func newMissionFixture(t *testing.T) *missionFixture {
	t.Helper()
	f := &missionFixture{
		missionRepo: newMemMissionRepo(),
		clientRepo:  newMemClientRepo(),
		auditRepo:   &memAuditRepo{},
	}

	f.client = model.Client{ID: uuid.New(), Name: "Aurora Jets"}
	if err := f.clientRepo.Create(context.Background(), &f.client); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	svc := NewMissionService(f.missionRepo, f.clientRepo, f.auditRepo, fakeTxManager{})
	svc.(*missionService).now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	f.svc = svc
	return f
}

func (f *missionFixture) create(t *testing.T) MissionResponse {
	t.Helper()
	resp, err := f.svc.CreateMission(context.Background(), uuid.NewString(), CreateMissionRequest{
		ClientID:         f.client.ID.String(),
		Aircraft:         "Falcon 7X",
		DepartureAirport: "LFPB",
		ArrivalAirport:   "EGGW",
		StartDate:        "2026-04-01",
		EndDate:          "2026-04-03",
	})
	if err != nil {
		t.Fatalf("CreateMission: %v", err)
	}
	return resp
}

func TestCreateMission(t *testing.T) {
	f := newMissionFixture(t)

	resp := f.create(t)
	if resp.Reference != "MSN-20260314-0001" {
		t.Errorf("reference = %q, want MSN-20260314-0001", resp.Reference)
	}
	if resp.Status != string(workflow.StatusPendingFinanceReview) {
		t.Errorf("status = %q, new missions start in pending_finance_review", resp.Status)
	}
	if resp.ValidationStatus != string(workflow.ValidationPending) {
		t.Errorf("validation status = %q, want pending", resp.ValidationStatus)
	}
	if resp.ClientName != "Aurora Jets" {
		t.Errorf("client name = %q, want Aurora Jets", resp.ClientName)
	}

	// references are sequenced per day
	second := f.create(t)
	if second.Reference != "MSN-20260314-0002" {
		t.Errorf("second reference = %q, want MSN-20260314-0002", second.Reference)
	}
}

func TestCreateMissionGuards(t *testing.T) {
	f := newMissionFixture(t)

	tests := []struct {
		name    string
		mutate  func(*CreateMissionRequest)
		wantErr string
	}{
		{
			name:    "unknown client",
			mutate:  func(r *CreateMissionRequest) { r.ClientID = uuid.NewString() },
			wantErr: "client not found",
		},
		{
			name:    "malformed client id",
			mutate:  func(r *CreateMissionRequest) { r.ClientID = "not-a-uuid" },
			wantErr: "invalid client_id",
		},
		{
			name:    "end before start",
			mutate:  func(r *CreateMissionRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate },
			wantErr: "end_date",
		},
		{
			name:    "unparseable date",
			mutate:  func(r *CreateMissionRequest) { r.StartDate = "01/04/2026" },
			wantErr: "invalid start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CreateMissionRequest{
				ClientID:  f.client.ID.String(),
				StartDate: "2026-04-01",
				EndDate:   "2026-04-03",
			}
			tt.mutate(&req)
			_, err := f.svc.CreateMission(context.Background(), uuid.NewString(), req)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// The happy path walks the whole approval chain through the transition table.
func TestMissionApprovalChain(t *testing.T) {
	f := newMissionFixture(t)
	created := f.create(t)
	actor := uuid.NewString()

	resp, err := f.svc.FinanceApprove(context.Background(), created.ID, actor)
	if err != nil {
		t.Fatalf("FinanceApprove: %v", err)
	}
	if resp.Status != string(workflow.StatusWaitingOwnerApproval) {
		t.Errorf("after finance approve status = %q, want waiting_owner_approval", resp.Status)
	}

	resp, err = f.svc.OwnerApprove(context.Background(), created.ID, actor)
	if err != nil {
		t.Fatalf("OwnerApprove: %v", err)
	}
	if resp.Status != string(workflow.StatusPendingClientApproval) {
		t.Errorf("after owner approve status = %q, want pending_client_approval", resp.Status)
	}
}

func TestMissionTransitionRefused(t *testing.T) {
	f := newMissionFixture(t)
	created := f.create(t)
	actor := uuid.NewString()

	// owner approval cannot skip the finance review
	_, err := f.svc.OwnerApprove(context.Background(), created.ID, actor)
	var invalid workflow.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
	if invalid.From != workflow.StatusPendingFinanceReview || invalid.Event != workflow.EventOwnerApprove {
		t.Errorf("transition error = %+v, want owner_approve from pending_finance_review", invalid)
	}

	// refused transitions leave the mission untouched
	reloaded, err := f.svc.GetMission(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetMission: %v", err)
	}
	if reloaded.Status != string(workflow.StatusPendingFinanceReview) {
		t.Errorf("status = %q, want unchanged pending_finance_review", reloaded.Status)
	}
}

func TestOwnerReject(t *testing.T) {
	f := newMissionFixture(t)
	created := f.create(t)
	actor := uuid.NewString()

	if _, err := f.svc.FinanceApprove(context.Background(), created.ID, actor); err != nil {
		t.Fatalf("FinanceApprove: %v", err)
	}
	resp, err := f.svc.OwnerReject(context.Background(), created.ID, actor, "aircraft unavailable")
	if err != nil {
		t.Fatalf("OwnerReject: %v", err)
	}
	if resp.Status != string(workflow.StatusOwnerRejected) {
		t.Errorf("status = %q, want owner_rejected", resp.Status)
	}

	// the rejection reason lands in the audit trail
	entries, _, err := f.auditRepo.List(context.Background(), model.ActionOwnerReject, created.ID, 1, 10)
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(entries) != 1 || !strings.Contains(entries[0].Details, "aircraft unavailable") {
		t.Errorf("audit entries = %+v, want one with the rejection reason", entries)
	}
}

func TestStartExecution(t *testing.T) {
	f := newMissionFixture(t)
	created := f.create(t)
	actor := uuid.NewString()

	// force the mission into pending_execution
	mission, err := f.missionRepo.FindByID(context.Background(), uuid.MustParse(created.ID))
	if err != nil {
		t.Fatalf("reload mission: %v", err)
	}
	mission.Status = workflow.StatusPendingExecution
	if err := f.missionRepo.Update(context.Background(), mission); err != nil {
		t.Fatalf("update mission: %v", err)
	}

	resp, err := f.svc.StartExecution(context.Background(), created.ID, actor)
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if resp.Status != string(workflow.StatusInProgress) {
		t.Errorf("status = %q, want in_progress", resp.Status)
	}
}

func TestListMissionsUnknownStatus(t *testing.T) {
	f := newMissionFixture(t)
	if _, _, err := f.svc.ListMissions(context.Background(), MissionFilter{Status: "halted"}); err == nil {
		t.Fatal("expected error for unknown status filter")
	}
}
