package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"ballotbox/config"
	ballot_errors "ballotbox/pkg/errors"
)

func newAuthFixture() (*AuthService, *fakeProfileRepo) {
	profiles := newFakeProfileRepo()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiryMin:  15,
		RefreshExpiry: 14,
	}
	return NewAuthService(profiles, cfg), profiles
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:    "ada@example.com",
		Password: "s3cret-password",
		FullName: "Ada Obi",
		State:    "Lagos",
	}
}

func TestRegisterAndParseToken(t *testing.T) {
	service, _ := newAuthFixture()

	resp, err := service.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() = %v, want nil", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("Register() returned empty tokens")
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("User.Email = %q, want ada@example.com", resp.User.Email)
	}

	claims, err := service.ParseAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken() = %v, want nil", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, resp.User.ID)
	}
	if claims.SessionID != resp.SessionID {
		t.Errorf("claims.SessionID = %q, want %q", claims.SessionID, resp.SessionID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newAuthFixture()

	if _, err := service.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first Register() = %v", err)
	}
	_, err := service.Register(context.Background(), registerInput())
	if !errors.Is(err, ballot_errors.ErrAlreadyExists) {
		t.Fatalf("duplicate Register() = %v, want ErrAlreadyExists", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	service, _ := newAuthFixture()

	in := registerInput()
	in.Password = "short"
	_, err := service.Register(context.Background(), in)
	if !errors.Is(err, ballot_errors.ErrInvalidInput) {
		t.Fatalf("Register() = %v, want ErrInvalidInput", err)
	}
}

func TestLogin(t *testing.T) {
	service, _ := newAuthFixture()
	if _, err := service.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("Register() = %v", err)
	}

	// Email is normalized, so case differences still match.
	resp, err := service.Login(context.Background(), LoginInput{Email: "Ada@Example.com", Password: "s3cret-password"})
	if err != nil {
		t.Fatalf("Login() = %v, want nil", err)
	}
	if resp.AccessToken == "" {
		t.Error("Login() returned empty access token")
	}

	_, err = service.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("Login() bad password = %v, want ErrUnauthenticated", err)
	}

	_, err = service.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "s3cret-password"})
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("Login() unknown email = %v, want ErrUnauthenticated", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	service, _ := newAuthFixture()
	registered, err := service.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	refreshed, err := service.Refresh(context.Background(), RefreshInput{
		SessionID:    registered.SessionID,
		RefreshToken: registered.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh() = %v, want nil", err)
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The consumed token is dead after rotation.
	_, err = service.Refresh(context.Background(), RefreshInput{
		SessionID:    registered.SessionID,
		RefreshToken: registered.RefreshToken,
	})
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("Refresh() with stale token = %v, want ErrUnauthenticated", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	service, _ := newAuthFixture()
	registered, err := service.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	if err := service.Logout(context.Background(), registered.SessionID); err != nil {
		t.Fatalf("Logout() = %v, want nil", err)
	}

	sessionID := uuid.MustParse(registered.SessionID)
	userID := uuid.MustParse(registered.User.ID)
	_, err = service.ValidateSession(context.Background(), sessionID, userID)
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("ValidateSession() after logout = %v, want ErrUnauthenticated", err)
	}

	_, err = service.Refresh(context.Background(), RefreshInput{
		SessionID:    registered.SessionID,
		RefreshToken: registered.RefreshToken,
	})
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("Refresh() after logout = %v, want ErrUnauthenticated", err)
	}
}

func TestValidateSessionWrongUser(t *testing.T) {
	service, _ := newAuthFixture()
	registered, err := service.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	sessionID := uuid.MustParse(registered.SessionID)
	_, err = service.ValidateSession(context.Background(), sessionID, uuid.New())
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("ValidateSession() other user = %v, want ErrUnauthenticated", err)
	}
}

func TestParseAccessTokenRejectsForgery(t *testing.T) {
	service, _ := newAuthFixture()
	registered, err := service.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	other := NewAuthService(newFakeProfileRepo(), &config.Config{
		JWTSecret:     "different-secret",
		JWTExpiryMin:  15,
		RefreshExpiry: 14,
	})
	_, err = other.ParseAccessToken(registered.AccessToken)
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("ParseAccessToken() wrong secret = %v, want ErrUnauthenticated", err)
	}

	if _, err := other.ParseAccessToken("not-a-token"); !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("ParseAccessToken() garbage = %v, want ErrUnauthenticated", err)
	}
}
