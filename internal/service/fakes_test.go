package service

// In-memory repository doubles shared by the service tests. Each one keeps
// the interface contract of its gorm-backed counterpart, including returning
// gorm.ErrRecordNotFound for missing rows, so services under test cannot tell
// the difference.

import (
	"context"
	"strings"
	"sync"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"
	"crewops/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu         sync.Mutex
	broadcasts []string
}

func (f *fakeNotifier) Broadcast(_ context.Context, notifType, _, _ string, _ *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, notifType)
	return nil
}

func (f *fakeNotifier) NotifyUser(context.Context, uuid.UUID, string, string, string, *uuid.UUID) error {
	return nil
}

func (f *fakeNotifier) ListForUser(context.Context, string, int, int) ([]NotificationResponse, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkRead(context.Context, string, string) error { return nil }

// --- missions ---

type memMissionRepo struct {
	mu       sync.Mutex
	missions map[uuid.UUID]model.Mission
}

func newMemMissionRepo() *memMissionRepo {
	return &memMissionRepo{missions: make(map[uuid.UUID]model.Mission)}
}

func (r *memMissionRepo) Create(_ context.Context, mission *model.Mission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mission.ID == uuid.Nil {
		mission.ID = uuid.New()
	}
	mission.CreatedAt = time.Now()
	r.missions[mission.ID] = *mission
	return nil
}

func (r *memMissionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mission, ok := r.missions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &mission, nil
}

func (r *memMissionRepo) FindByIDWithClient(ctx context.Context, id uuid.UUID) (*model.Mission, error) {
	return r.FindByID(ctx, id)
}

func (r *memMissionRepo) List(_ context.Context, filter repository.MissionFilter) ([]model.Mission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Mission
	for _, m := range r.missions {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.ClientID != nil && m.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *memMissionRepo) Update(_ context.Context, mission *model.Mission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.missions[mission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.missions[mission.ID] = *mission
	return nil
}

func (r *memMissionRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.missions {
		if strings.HasPrefix(m.Reference, prefix) {
			count++
		}
	}
	return count, nil
}

// --- quotes ---

type memQuoteRepo struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]model.Quote
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{quotes: make(map[uuid.UUID]model.Quote)}
}

func (r *memQuoteRepo) Create(_ context.Context, quote *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	r.quotes[quote.ID] = *quote
	return nil
}

func (r *memQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quote, ok := r.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &quote, nil
}

func (r *memQuoteRepo) FindByMission(_ context.Context, missionID uuid.UUID) (*model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.MissionID == missionID {
			quote := q
			return &quote, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	return r.FindByID(ctx, id)
}

func (r *memQuoteRepo) CreateItems(context.Context, []model.QuoteItem) error { return nil }

func (r *memQuoteRepo) Update(_ context.Context, quote *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[quote.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.quotes[quote.ID] = *quote
	return nil
}

// --- assignments ---

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]model.Assignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[uuid.UUID]model.Assignment)}
}

func (r *memAssignmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *memAssignmentRepo) FindByMissionAndUser(_ context.Context, missionID, userID uuid.UUID) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.MissionID == missionID && a.UserID == userID {
			out := a
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAssignmentRepo) ListByMission(_ context.Context, missionID uuid.UUID) ([]model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Assignment
	for _, a := range r.assignments {
		if a.MissionID == missionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Upsert keys on (mission_id, user_id), matching the unique index the real
// repository relies on.
func (r *memAssignmentRepo) Upsert(_ context.Context, assignment *model.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.assignments {
		if existing.MissionID == assignment.MissionID && existing.UserID == assignment.UserID {
			assignment.ID = id
			r.assignments[id] = *assignment
			return nil
		}
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	r.assignments[assignment.ID] = *assignment
	return nil
}

func (r *memAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.assignments[assignment.ID] = *assignment
	return nil
}

func (r *memAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, id)
	return nil
}

func (r *memAssignmentRepo) CountByMission(_ context.Context, missionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.assignments {
		if a.MissionID == missionID {
			count++
		}
	}
	return count, nil
}

// --- supplier invoices ---

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]model.SupplierInvoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]model.SupplierInvoice)}
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *model.SupplierInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.CreatedAt = time.Now()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplierInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (r *memInvoiceRepo) ListByMission(_ context.Context, missionID uuid.UUID) ([]model.SupplierInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SupplierInvoice
	for _, inv := range r.invoices {
		if inv.MissionID == missionID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) List(_ context.Context, status string, _, _ int) ([]model.SupplierInvoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SupplierInvoice
	for _, inv := range r.invoices {
		if status != "" && inv.Status != status {
			continue
		}
		out = append(out, inv)
	}
	return out, int64(len(out)), nil
}

func (r *memInvoiceRepo) UpdateStatus(_ context.Context, invoice *model.SupplierInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[invoice.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) SumApprovedByAssignment(_ context.Context, assignmentID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, inv := range r.invoices {
		if inv.AssignmentID == assignmentID && inv.Status == model.InvoiceApproved {
			sum = sum.Add(inv.Amount)
		}
	}
	return sum, nil
}

// --- documents ---

type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]model.Document
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[uuid.UUID]model.Document)}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &doc, nil
}

func (r *memDocumentRepo) ListByMission(_ context.Context, missionID uuid.UUID) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Document
	for _, doc := range r.docs {
		if doc.MissionID != nil && *doc.MissionID == missionID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *memDocumentRepo) ExistsForUser(_ context.Context, userID uuid.UUID, docType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.UserID != nil && *doc.UserID == userID && doc.Type == docType {
			return true, nil
		}
	}
	return false, nil
}

func (r *memDocumentRepo) CountByTitlePrefix(_ context.Context, prefix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, doc := range r.docs {
		if strings.HasPrefix(doc.Title, prefix) {
			count++
		}
	}
	return count, nil
}

// --- approval tokens ---

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]model.ClientApprovalToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]model.ClientApprovalToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *model.ClientApprovalToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r *memTokenRepo) FindByToken(_ context.Context, token string) (*model.ClientApprovalToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *memTokenRepo) Update(_ context.Context, token *model.ClientApprovalToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.Token]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.tokens[token.Token] = *token
	return nil
}

// --- clients ---

type memClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]model.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: make(map[uuid.UUID]model.Client)}
}

func (r *memClientRepo) Create(_ context.Context, client *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *memClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (r *memClientRepo) List(_ context.Context, _, _ int) ([]model.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Client
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memClientRepo) Update(_ context.Context, client *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.clients[client.ID] = *client
	return nil
}

// --- users ---

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.User
	tokens map[string]model.RefreshToken
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:  make(map[string]model.User),
		tokens: make(map[string]model.RefreshToken),
	}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID.String()] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(_ context.Context, role string, validationStatus workflow.ValidationStatus, _, _ int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		if validationStatus != "" && u.ValidationStatus != validationStatus {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID.String()] = *user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r *memUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rt, nil
}

func (r *memUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memUserRepo) DeleteRefreshTokensForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rt := range r.tokens {
		if rt.UserID.String() == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *memUserRepo) DeleteExpiredRefreshTokens(_ context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rt := range r.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(r.tokens, k)
		}
	}
	return nil
}

// --- invitations ---

type memInvitationRepo struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]model.Invitation
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{invitations: make(map[uuid.UUID]model.Invitation)}
}

func (r *memInvitationRepo) Create(_ context.Context, invitation *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invitation.ID == uuid.Nil {
		invitation.ID = uuid.New()
	}
	invitation.CreatedAt = time.Now()
	r.invitations[invitation.ID] = *invitation
	return nil
}

func (r *memInvitationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invitation, ok := r.invitations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &invitation, nil
}

func (r *memInvitationRepo) FindByToken(_ context.Context, token string) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			invitation := inv
			return &invitation, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInvitationRepo) List(_ context.Context, status string, _, _ int) ([]model.Invitation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invitation
	for _, inv := range r.invitations {
		if status != "" && inv.Status != status {
			continue
		}
		out = append(out, inv)
	}
	return out, int64(len(out)), nil
}

func (r *memInvitationRepo) Update(_ context.Context, invitation *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[invitation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.invitations[invitation.ID] = *invitation
	return nil
}

// --- audit ---

type memAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *memAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, action, entityID string, _, _ int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for _, e := range r.entries {
		if action != "" && e.Action != action {
			continue
		}
		if entityID != "" && e.EntityID != entityID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}
