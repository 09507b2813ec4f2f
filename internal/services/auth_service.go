package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"ballotbox/config"
	"ballotbox/internal/domain/profile"
	"ballotbox/internal/repository"
	ballot_errors "ballotbox/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	profileRepo repository.ProfileRepository
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewAuthService(profileRepo repository.ProfileRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		jwtSecret:   []byte(cfg.JWTSecret),
		accessTTL:   time.Duration(cfg.JWTExpiryMin) * time.Minute,
		refreshTTL:  time.Duration(cfg.RefreshExpiry) * 24 * time.Hour,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	State    string
	LGA      string
}

type LoginInput struct {
	Email    string
	Password string
}

type RefreshInput struct {
	SessionID    string
	RefreshToken string
}

type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	ExpiresIn    int64       `json:"expires_in"`
	SessionID    string      `json:"session_id"`
	User         ProfileInfo `json:"user"`
}

type ProfileInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name"`
	State    string `json:"state,omitempty"`
	LGA      string `json:"lga,omitempty"`
}

type AccessClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.profileRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, ballot_errors.ErrAlreadyExists
	} else if !errors.Is(err, ballot_errors.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	p := profile.Profile{
		ID:           uuid.New(),
		Email:        toNullString(in.Email),
		PasswordHash: hash,
		FullName:     in.FullName,
		State:        in.State,
		LGA:          in.LGA,
	}
	if err := s.profileRepo.Create(ctx, &p); err != nil {
		return AuthResponse{}, err
	}

	return s.issueTokens(ctx, p)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, ballot_errors.ErrInvalidInput
	}

	p, err := s.profileRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ballot_errors.ErrNotFound) {
			return AuthResponse{}, ballot_errors.ErrUnauthenticated
		}
		return AuthResponse{}, err
	}

	if err := comparePassword(p.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}

	return s.issueTokens(ctx, p)
}

// Refresh rotates the refresh token on every use.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (AuthResponse, error) {
	sessionID, err := uuid.Parse(in.SessionID)
	if err != nil || in.RefreshToken == "" {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}

	session, err := s.profileRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}
	if session.IsRevoked || time.Now().After(session.ExpiresAt) {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}
	if !s.compareRefreshToken(session.RefreshTokenHash, in.RefreshToken) {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}

	p, err := s.profileRepo.GetByID(ctx, session.ProfileID)
	if err != nil {
		return AuthResponse{}, ballot_errors.ErrUnauthenticated
	}

	refreshToken, err := generateToken(32)
	if err != nil {
		return AuthResponse{}, err
	}
	session.RefreshTokenHash = s.hashRefreshToken(refreshToken)
	session.ExpiresAt = time.Now().Add(s.refreshTTL)
	if err := s.profileRepo.UpdateSession(ctx, session); err != nil {
		return AuthResponse{}, err
	}

	accessToken, expiresIn, err := s.newAccessToken(p.ID, session.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		SessionID:    session.ID.String(),
		User:         toProfileInfo(p),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return ballot_errors.ErrInvalidInput
	}
	return s.profileRepo.RevokeSession(ctx, id)
}

func (s *AuthService) issueTokens(ctx context.Context, p profile.Profile) (AuthResponse, error) {
	refreshToken, err := generateToken(32)
	if err != nil {
		return AuthResponse{}, err
	}

	session := profile.Session{
		ProfileID:        p.ID,
		RefreshTokenHash: s.hashRefreshToken(refreshToken),
		ExpiresAt:        time.Now().Add(s.refreshTTL),
	}
	if err := s.profileRepo.CreateSession(ctx, &session); err != nil {
		return AuthResponse{}, err
	}

	accessToken, expiresIn, err := s.newAccessToken(p.ID, session.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		SessionID:    session.ID.String(),
		User:         toProfileInfo(p),
	}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, ballot_errors.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ballot_errors.ErrUnauthenticated
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, ballot_errors.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, ballot_errors.ErrUnauthenticated
	}

	return *claims, nil
}

// ValidateSession checks that the session backing an access token is still
// live and belongs to the token's user.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) (profile.Session, error) {
	session, err := s.profileRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return profile.Session{}, ballot_errors.ErrUnauthenticated
	}
	if session.ProfileID != userID || session.IsRevoked || time.Now().After(session.ExpiresAt) {
		return profile.Session{}, ballot_errors.ErrUnauthenticated
	}
	return session, nil
}

func (s *AuthService) newAccessToken(userID, sessionID uuid.UUID) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessClaims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}

// HTTPStatus maps service errors onto HTTP status codes at the handler
// boundary. Unknown errors are opaque store failures.
func HTTPStatus(err error) int {
	if _, ok := ballot_errors.AsValidation(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ballot_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ballot_errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ballot_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ballot_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ballot_errors.ErrAlreadyVoted),
		errors.Is(err, ballot_errors.ErrAlreadyExists),
		errors.Is(err, ballot_errors.ErrPollInactive),
		errors.Is(err, ballot_errors.ErrPollEnded):
		return http.StatusConflict
	case errors.Is(err, ballot_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode is the machine-readable tag used in error envelopes.
func ErrorCode(err error) string {
	if _, ok := ballot_errors.AsValidation(err); ok {
		return "VALIDATION_FAILED"
	}
	switch {
	case errors.Is(err, ballot_errors.ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, ballot_errors.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ballot_errors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ballot_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ballot_errors.ErrAlreadyVoted):
		return "ALREADY_VOTED"
	case errors.Is(err, ballot_errors.ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ballot_errors.ErrPollInactive):
		return "POLL_INACTIVE"
	case errors.Is(err, ballot_errors.ErrPollEnded):
		return "POLL_ENDED"
	case errors.Is(err, ballot_errors.ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "STORE_FAILURE"
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"
var sessionIDKey ctxKey = "session_id"

func WithUserContext(ctx context.Context, userID, sessionID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(sessionIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	sessionID, ok := value.(uuid.UUID)
	return sessionID, ok
}

func (s *AuthService) hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) compareRefreshToken(hash, token string) bool {
	computed := s.hashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}

func validateRegister(in RegisterInput) error {
	if in.Email == "" || in.Password == "" || in.FullName == "" {
		return ballot_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return ballot_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func toProfileInfo(p profile.Profile) ProfileInfo {
	info := ProfileInfo{
		ID:       p.ID.String(),
		FullName: p.FullName,
		State:    p.State,
		LGA:      p.LGA,
	}
	if p.Email.Valid {
		info.Email = p.Email.String
	}
	return info
}
