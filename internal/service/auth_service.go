package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/notify"
	"github.com/MitulSonagara/blog-backend/internal/repository"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
	"github.com/MitulSonagara/blog-backend/pkg/telemetry"
)

// Postgres error code for a unique constraint violation
const uniqueViolationCode = "23505"

// AuthService handles registration, login and the refresh token lifecycle.
// A user has at most one active refresh token; its bcrypt hash lives on the
// user row and is replaced on every login and refresh.
type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	publisher  notify.Publisher
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, tokens *TokenService, publisher notify.Publisher, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		publisher:  publisher,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user account with the user role and publishes a
// registration event. No tokens are issued; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", email))

	user, err := s.createUser(ctx, email, password, name, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Timestamp: user.CreatedAt,
	})

	logger.Get().Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	return user, nil
}

// CreateAdmin creates a new user account with the admin role
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.CreateAdmin")
	defer span.End()

	user, err := s.createUser(ctx, email, password, name, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("admin created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. An unknown email
// yields ErrUserNotFound while a bad password yields ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueAndStore(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Get().Info("user logged in", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Refresh rotates the refresh token: the presented token must verify and
// match the stored hash, then a new pair replaces it. A token that was
// already rotated out fails with ErrRefreshTokenInvalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.tokens.Verify(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.HashedRefreshToken == nil {
		return nil, nil, ErrRefreshTokenInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.HashedRefreshToken), []byte(digestToken(refreshToken))); err != nil {
		return nil, nil, ErrRefreshTokenInvalid
	}

	pair, err := s.issueAndStore(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Get().Info("tokens refreshed", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Logout clears the stored refresh token hash, invalidating the session
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.users.UpdateRefreshTokenHash(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	logger.Get().Info("user logged out", zap.String("user_id", userID))
	return nil
}

// GetByID loads a user profile
func (s *AuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the pre-check and trip
		// the unique email index instead.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueAndStore(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(digestToken(pair.RefreshToken)), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	hashStr := string(hash)
	if err := s.users.UpdateRefreshTokenHash(ctx, user.ID, &hashStr); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.HashedRefreshToken = &hashStr
	return pair, nil
}

// digestToken collapses a JWT to a fixed-size digest before bcrypt, which
// rejects inputs over 72 bytes.
func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}
