package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"crewops/internal/model"
	"crewops/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userFixture struct {
	svc      UserService
	userRepo *memUserRepo
	now      time.Time
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		userRepo: newMemUserRepo(),
		now:      time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC),
	}
	svc := NewUserService(f.userRepo, &memAuditRepo{}, fakeTxManager{})
	svc.(*userService).now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func (f *userFixture) createUser(t *testing.T, username, email, role string) *UserResponse {
	t.Helper()
	user, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: username,
		Email:    email,
		Password: "hunter22",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestCreateUserValidationStatus(t *testing.T) {
	f := newUserFixture(t)

	crew := f.createUser(t, "pilot", "pilot@example.com", model.RoleCrew)
	if crew.ValidationStatus != string(workflow.ValidationPending) {
		t.Errorf("crew validation status = %q, want pending", crew.ValidationStatus)
	}

	staff := f.createUser(t, "ops", "ops@example.com", model.RoleOps)
	if staff.ValidationStatus != string(workflow.ValidationValidated) {
		t.Errorf("staff validation status = %q, want validated", staff.ValidationStatus)
	}
}

func TestCreateUserUniqueness(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "pilot", "pilot@example.com", model.RoleCrew)

	if _, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "pilot",
		Email:    "other@example.com",
		Password: "hunter22",
		Role:     model.RoleCrew,
	}); err == nil || !strings.Contains(err.Error(), "username already exists") {
		t.Fatalf("error = %v, want username already exists", err)
	}

	if _, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "copilot",
		Email:    "pilot@example.com",
		Password: "hunter22",
		Role:     model.RoleCrew,
	}); err == nil || !strings.Contains(err.Error(), "email already exists") {
		t.Fatalf("error = %v, want email already exists", err)
	}
}

func TestLogin(t *testing.T) {
	f := newUserFixture(t)
	created := f.createUser(t, "ops", "ops@example.com", model.RoleOps)

	tokens, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "ops@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.RefreshToken == "" {
		t.Fatal("no refresh token issued")
	}

	// the access token carries the subject and role claims. Expiry is pinned
	// to the fixture clock, so claim validation is skipped here.
	parsed, err := jwt.Parse(tokens.Token, func(*jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type = %T", parsed.Claims)
	}
	if claims["sub"] != created.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], created.ID)
	}
	if claims["role"] != model.RoleOps {
		t.Errorf("role = %v, want ops", claims["role"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "ops", "ops@example.com", model.RoleOps)

	for _, req := range []LoginUserRequest{
		{Email: "ops@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "hunter22"},
	} {
		if _, err := f.svc.Login(context.Background(), req); err == nil || !strings.Contains(err.Error(), "invalid email or password") {
			t.Errorf("login %s error = %v, want invalid email or password", req.Email, err)
		}
	}
}

// Refresh rotates the token: the presented one dies, and a stolen copy
// therefore works at most once.
func TestRefreshRotation(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "ops", "ops@example.com", model.RoleOps)

	first, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "ops@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh did not rotate the token")
	}

	if _, err := f.svc.Refresh(context.Background(), first.RefreshToken); err == nil || !strings.Contains(err.Error(), "invalid refresh token") {
		t.Fatalf("replayed token error = %v, want invalid refresh token", err)
	}
}

func TestRefreshExpired(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "ops", "ops@example.com", model.RoleOps)

	tokens, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "ops@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.now = f.now.Add(refreshTokenTTL + time.Hour)
	if _, err := f.svc.Refresh(context.Background(), tokens.RefreshToken); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("error = %v, want expired", err)
	}
	// an expired token is purged, not just refused
	if _, err := f.userRepo.GetRefreshToken(context.Background(), tokens.RefreshToken); err == nil {
		t.Error("expired refresh token still stored")
	}
}

func TestLogout(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "ops", "ops@example.com", model.RoleOps)

	tokens, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "ops@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := f.svc.Logout(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatal("refresh token usable after logout")
	}
}

func TestValidateProfile(t *testing.T) {
	f := newUserFixture(t)
	crew := f.createUser(t, "pilot", "pilot@example.com", model.RoleCrew)
	hr := uuid.NewString()

	validated, err := f.svc.ValidateProfile(context.Background(), hr, crew.ID.String())
	if err != nil {
		t.Fatalf("ValidateProfile: %v", err)
	}
	if validated.ValidationStatus != string(workflow.ValidationValidated) {
		t.Errorf("validation status = %q, want validated", validated.ValidationStatus)
	}

	// validation is idempotent only in one direction: re-validating is refused
	if _, err := f.svc.ValidateProfile(context.Background(), hr, crew.ID.String()); err == nil || !strings.Contains(err.Error(), "already validated") {
		t.Fatalf("second validation error = %v, want already validated", err)
	}

	// a validated profile can still be rejected after re-review
	rejected, err := f.svc.RejectProfile(context.Background(), hr, crew.ID.String(), "licence lapsed")
	if err != nil {
		t.Fatalf("RejectProfile: %v", err)
	}
	if rejected.ValidationStatus != string(workflow.ValidationRejected) {
		t.Errorf("validation status = %q, want rejected", rejected.ValidationStatus)
	}
}

func TestValidateProfileStaffRefused(t *testing.T) {
	f := newUserFixture(t)
	staff := f.createUser(t, "cfo", "cfo@example.com", model.RoleFinance)

	if _, err := f.svc.ValidateProfile(context.Background(), uuid.NewString(), staff.ID.String()); err == nil || !strings.Contains(err.Error(), "only crew profiles") {
		t.Fatalf("error = %v, want only crew profiles", err)
	}
}
