package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civix-service/internal/auth"
	"github.com/spec-kit/civix-service/internal/config"
	"github.com/spec-kit/civix-service/internal/domain"
	"github.com/spec-kit/civix-service/internal/events"
	"github.com/spec-kit/civix-service/internal/repository"
	"github.com/spec-kit/civix-service/internal/session"
	apperrors "github.com/spec-kit/civix-service/pkg/util"
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
	Location string
}

// AuthService coordinates registration, login and session validation.
type AuthService struct {
	users             repository.UserRepository
	sessions          session.Store
	tokenMgr          *auth.TokenManager
	dispatcher        events.Dispatcher
	logger            *zap.Logger
	bcryptCost        int
	minPasswordLength int
	// dummyHash is compared against when the email is unknown, so a
	// missing account costs the same time as a wrong password.
	dummyHash string
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.Auth.BcryptCost)
	if err != nil {
		dummyHash = ""
	}

	return &AuthService{
		users:             deps.UserRepo,
		sessions:          deps.Sessions,
		tokenMgr:          auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		dispatcher:        dispatcher,
		logger:            logger,
		bcryptCost:        cfg.Auth.BcryptCost,
		minPasswordLength: cfg.Auth.MinPasswordLength,
		dummyHash:         dummyHash,
	}
}

// Register creates a new account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, *domain.Session, error) {
	if err := s.validateRegistration(&in); err != nil {
		return nil, "", nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Location:     in.Location,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, "", nil, apperrors.NewInternalError(err)
	}

	token, sess, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.UserRegisteredPayload{
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			Location: user.Location,
		},
	})

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, token, sess, nil
}

// Login authenticates an account by email and password. Every failure
// surfaces the same generic error; the cause is logged server-side only.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, *domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a bcrypt compare so an unknown email is not
		// distinguishable from a wrong password by timing.
		_ = auth.ComparePassword(s.dummyHash, password)
		s.logger.Info("login failed", zap.String("reason", "unknown email"))
		return nil, "", nil, apperrors.NewUnauthorized(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed", zap.String("reason", "password mismatch"), zap.String("user_id", user.ID))
		return nil, "", nil, apperrors.NewUnauthorized(err)
	}

	token, sess, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserLoggedIn,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})

	return user, token, sess, nil
}

// CurrentUser resolves a session artifact into the account it belongs to.
// Absent, malformed, expired and revoked artifacts all fail identically.
func (s *AuthService) CurrentUser(ctx context.Context, artifact string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(artifact)
	if err != nil {
		return nil, apperrors.NewUnauthorized(err)
	}

	userID, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.NewUnauthorized(err)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if userID != claims.Subject {
		return nil, apperrors.NewUnauthorized(errors.New("session subject mismatch"))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized(err)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Logout revokes the session behind the artifact. It is idempotent and
// never fails the caller, even for artifacts that are already invalid.
func (s *AuthService) Logout(ctx context.Context, artifact string) {
	if artifact == "" {
		return
	}
	claims, err := s.tokenMgr.ParseToken(artifact)
	if err != nil {
		return
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.Warn("session revoke failed", zap.Error(err))
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionRevoked,
		UserID:    claims.Subject,
		Timestamp: time.Now(),
		Payload:   events.SessionRevokedPayload{SessionID: claims.ID},
	})
}

// TokenTTL exposes the session lifetime for cookie expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenMgr.TTL()
}

func (s *AuthService) openSession(ctx context.Context, userID string) (string, *domain.Session, error) {
	token, sess, err := s.tokenMgr.GenerateToken(userID)
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	return token, sess, nil
}

func (s *AuthService) validateRegistration(in *RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Location = strings.TrimSpace(in.Location)

	if in.Name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if in.Email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return apperrors.NewValidationError("email is not valid", nil)
	}
	if len(in.Password) < s.minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPasswordLength), nil)
	}
	if in.Role == "" {
		in.Role = domain.UserRoleCitizen
	}
	if !domain.ValidRole(in.Role) {
		return apperrors.NewValidationError("role must be citizen or official", nil)
	}
	return nil
}
