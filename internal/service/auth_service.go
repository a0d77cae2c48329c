package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/session"
)

// ErrInvalidCredentials is returned for any failed login, without
// distinguishing unknown usernames from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUsernameTaken is returned when provisioning collides with an existing
// username.
var ErrUsernameTaken = errors.New("username already taken")

// AuthService is the credential-verifier collaborator: it checks raw
// credentials against the subject directory, provisions subjects and drives
// token issuance.
type AuthService struct {
	subjects   repository.SubjectRepository
	issuer     *auth.Issuer
	registry   session.Registry
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(subjects repository.SubjectRepository, issuer *auth.Issuer, registry session.Registry, dispatcher events.Dispatcher, bcryptCost int) *AuthService {
	return &AuthService{
		subjects:   subjects,
		issuer:     issuer,
		registry:   registry,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
	}
}

// CreateSubject provisions a new subject with a bcrypt-hashed password.
func (s *AuthService) CreateSubject(ctx context.Context, username, name, password string, role domain.Role) (*domain.Subject, error) {
	existing, err := s.subjects.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	subject := &domain.Subject{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// Login verifies credentials and mints a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Subject, *domain.TokenPair, error) {
	subject, err := s.subjects.GetByUsername(ctx, username)
	if err != nil || subject == nil || !subject.Active {
		return nil, nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(subject.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.Issue(ctx, subject)
	if err != nil {
		return nil, nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSubjectLoggedIn,
		SubjectID: subject.ID,
		Username:  subject.Username,
		Timestamp: time.Now(),
	})
	return subject, pair, nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Subject, *domain.TokenPair, error) {
	subject, pair, err := s.issuer.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTokenRefreshed,
		SubjectID: subject.ID,
		Username:  subject.Username,
		Timestamp: time.Now(),
	})
	return subject, pair, nil
}

// Logout drops the subject's session record so the outstanding access token
// fails strict validation immediately.
func (s *AuthService) Logout(ctx context.Context, subject *domain.Subject) error {
	s.registry.Remove(ctx, subject.ID)

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSubjectLoggedOut,
		SubjectID: subject.ID,
		Username:  subject.Username,
		Timestamp: time.Now(),
	})
	return nil
}
