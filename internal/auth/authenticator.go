package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/session"
)

// Status is the terminal outcome of one authentication pass.
type Status int

const (
	// StatusUnauthenticated means no usable credential was presented; the
	// request proceeds as anonymous and downstream authorization decides.
	StatusUnauthenticated Status = iota
	// StatusAuthenticated means the caller's identity was established.
	StatusAuthenticated
	// StatusRejected means an explicit 401: a structurally valid credential
	// failed a strict-path policy check.
	StatusRejected
)

// RejectReason enumerates why a credential was rejected.
type RejectReason string

const (
	ReasonExpired              RejectReason = "expired"
	ReasonSuperseded           RejectReason = "superseded"
	ReasonSubjectNotFound      RejectReason = "subject_not_found"
	ReasonDirectoryUnavailable RejectReason = "directory_unavailable"
)

// Result is the transient outcome of validating one request.
type Result struct {
	Status  Status
	Subject *domain.Subject
	Claims  *Claims
	Reason  RejectReason
}

type memoEntry struct {
	subject *domain.Subject
	strict  bool
}

// Authenticator is the per-request gate. It decodes the bearer token, picks
// strict or relaxed validation from the route classifier, and consults the
// session registry on strict paths. A bounded positive-validation memo lets
// immediately repeated requests with the same token skip the directory and
// registry round trips; it only shortens validation, never weakens it.
type Authenticator struct {
	codec     *Codec
	registry  session.Registry
	directory Directory
	routes    *RouteClassifier
	memo      *session.Cache[memoEntry]
	memoTTL   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewAuthenticator wires the request gate.
func NewAuthenticator(cfg config.AuthConfig, codec *Codec, registry session.Registry, directory Directory, routes *RouteClassifier, logger *zap.Logger, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{
		codec:     codec,
		registry:  registry,
		directory: directory,
		routes:    routes,
		memo:      session.NewCache[memoEntry](cfg.ValidationCacheSize),
		memoTTL:   cfg.ValidationCacheTTL(),
		logger:    logger,
		metrics:   metrics,
	}
}

// Authenticate runs one validation pass for the given Authorization header
// value and request path. It never returns an error: bad credentials recover
// into an anonymous outcome so a garbled header cannot abort the pipeline.
func (a *Authenticator) Authenticate(ctx context.Context, authorization, path string) Result {
	class := a.routes.Classify(path)
	if class == ClassPublic {
		return a.outcome(path, Result{Status: StatusUnauthenticated})
	}

	tokenStr := bearerToken(authorization)
	if tokenStr == "" {
		return a.outcome(path, Result{Status: StatusUnauthenticated})
	}

	claims, err := a.codec.Decode(tokenStr)
	if err != nil {
		a.logger.Debug("discarding undecodable token", zap.Error(err))
		return a.outcome(path, Result{Status: StatusUnauthenticated})
	}

	strict := class == ClassStrict
	if entry, ok := a.memo.Get(tokenStr); ok && (entry.strict || !strict) {
		return a.outcome(path, Result{Status: StatusAuthenticated, Subject: entry.subject, Claims: claims})
	}

	subject, err := a.directory.GetByID(ctx, claims.SubjectID)
	if err != nil {
		// a transient directory outage is not "unknown subject"; fail
		// closed but report it as unavailability, never as a 401
		if !errors.Is(err, pgx.ErrNoRows) {
			a.logger.Warn("subject directory unavailable", zap.Error(err))
			return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonDirectoryUnavailable})
		}
		return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonSubjectNotFound})
	}
	if subject == nil || !subject.Active {
		return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonSubjectNotFound})
	}

	now := time.Now()
	if strict {
		if claims.Expired(now) {
			return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonExpired})
		}
		if !subject.Elevated() {
			current, found := a.registry.Get(ctx, subject.ID)
			if !found {
				return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonExpired})
			}
			if current != claims.TokenID {
				return a.outcome(path, Result{Status: StatusRejected, Reason: ReasonSuperseded})
			}
		}
	}

	a.memoize(tokenStr, subject, strict, claims, now)
	return a.outcome(path, Result{Status: StatusAuthenticated, Subject: subject, Claims: claims})
}

// memoize caches a positive validation. Strict memos never outlive the token
// itself; a relaxed memo is tagged so it can never satisfy a strict path.
func (a *Authenticator) memoize(tokenStr string, subject *domain.Subject, strict bool, claims *Claims, now time.Time) {
	ttl := a.memoTTL
	if strict {
		if remaining := claims.Remaining(now); remaining < ttl {
			ttl = remaining
		}
	}
	a.memo.Set(tokenStr, memoEntry{subject: subject, strict: strict}, ttl)
}

func (a *Authenticator) outcome(path string, result Result) Result {
	switch result.Status {
	case StatusAuthenticated:
		a.metrics.RecordAuthOutcome(path, "authenticated")
	case StatusRejected:
		a.metrics.RecordAuthOutcome(path, "rejected_"+string(result.Reason))
	default:
		a.metrics.RecordAuthOutcome(path, "unauthenticated")
	}
	return result
}

func bearerToken(authorization string) string {
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
