package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/session"
)

// ErrInvalidToken is returned when a refresh token fails signature or
// structure checks, or its subject no longer resolves.
var ErrInvalidToken = errors.New("invalid token")

// Issuer mints (access, refresh) token pairs and registers the access token
// in the session registry, which is what enforces single active session for
// standard-tier subjects.
type Issuer struct {
	codec      *Codec
	registry   session.Registry
	directory  Directory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
	adminTTL   time.Duration
}

// NewIssuer builds the issuer from configured lifetimes.
func NewIssuer(cfg config.AuthConfig, codec *Codec, registry session.Registry, directory Directory, dispatcher events.Dispatcher, logger *zap.Logger) *Issuer {
	return &Issuer{
		codec:      codec,
		registry:   registry,
		directory:  directory,
		dispatcher: dispatcher,
		logger:     logger,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		adminTTL:   cfg.AdminTokenTTL(),
	}
}

// Issue mints a fresh token pair for the subject. Elevated subjects get the
// long-lived access TTL; everyone shares the refresh TTL. Registering the new
// access token supersedes whatever session the subject already held.
func (i *Issuer) Issue(ctx context.Context, subject *domain.Subject) (*domain.TokenPair, error) {
	ttl := i.accessTTL
	if subject.Elevated() {
		ttl = i.adminTTL
	}

	access, claims, err := i.codec.Encode(subject.ID, ttl)
	if err != nil {
		return nil, err
	}
	refresh, _, err := i.codec.Encode(subject.ID, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	previous := i.registry.Put(ctx, subject.ID, claims.TokenID, ttl)
	if previous != "" && previous != claims.TokenID && !subject.Elevated() {
		i.logger.Info("session superseded",
			zap.String("subject_id", subject.ID),
			zap.String("token_id", claims.TokenID),
		)
		_ = i.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSessionSuperseded,
			SubjectID: subject.ID,
			Username:  subject.Username,
			TokenID:   previous,
			Timestamp: time.Now(),
		})
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresInMs:  ttl.Milliseconds(),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. Only signature and
// structure are checked on the presented token; the old refresh token is
// rotated out but not separately tracked for revocation.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (*domain.Subject, *domain.TokenPair, error) {
	claims, err := i.codec.Decode(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	subject, err := i.directory.GetByID(ctx, claims.SubjectID)
	if err != nil || subject == nil || !subject.Active {
		return nil, nil, ErrInvalidToken
	}

	pair, err := i.Issue(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	return subject, pair, nil
}
