package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
)

type fakeSubjectRepo struct {
	mu       sync.Mutex
	subjects map[string]*domain.Subject
}

func newFakeSubjectRepo(subjects ...*domain.Subject) *fakeSubjectRepo {
	repo := &fakeSubjectRepo{subjects: make(map[string]*domain.Subject)}
	for _, subject := range subjects {
		repo.subjects[subject.ID] = subject
	}
	return repo
}

func (r *fakeSubjectRepo) Create(_ context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subject.ID == "" {
		subject.ID = "subj-" + subject.Username
	}
	r.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) Update(_ context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) GetByID(_ context.Context, id string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subject, ok := r.subjects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return subject, nil
}

func (r *fakeSubjectRepo) GetByUsername(_ context.Context, username string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, subject := range r.subjects {
		if subject.Username == username {
			return subject, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRegistry struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{sessions: make(map[string]string)}
}

func (f *fakeRegistry) Put(_ context.Context, subjectID, tokenID string, _ time.Duration) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	previous := f.sessions[subjectID]
	f.sessions[subjectID] = tokenID
	return previous
}

func (f *fakeRegistry) Get(_ context.Context, subjectID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokenID, found := f.sessions[subjectID]
	return tokenID, found
}

func (f *fakeRegistry) Remove(_ context.Context, subjectID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, subjectID)
}

func newTestService(t *testing.T, subjects ...*domain.Subject) (*AuthService, *fakeRegistry, events.Dispatcher) {
	t.Helper()

	cfg := config.AuthConfig{
		JWTSecret:         "test-secret",
		AccessTokenTTLMs:  3600000,
		RefreshTokenTTLMs: 2592000000,
		AdminTokenTTLMs:   604800000,
	}
	repo := newFakeSubjectRepo(subjects...)
	registry := newFakeRegistry()
	dispatcher := events.NewInMemoryDispatcher()
	codec := auth.NewCodec(cfg.JWTSecret)
	issuer := auth.NewIssuer(cfg, codec, registry, repo, dispatcher, zap.NewNop())

	return NewAuthService(repo, issuer, registry, dispatcher, bcrypt.MinCost), registry, dispatcher
}

func testSubject(t *testing.T, username, password string, role domain.Role) *domain.Subject {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &domain.Subject{
		ID:           "subj-" + username,
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	subject := testSubject(t, "agent1", "s3cret", domain.RoleAgent)
	service, registry, dispatcher := newTestService(t, subject)

	var mu sync.Mutex
	var logins []string
	dispatcher.Subscribe(events.EventSubjectLoggedIn, func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		logins = append(logins, event.SubjectID)
		return nil
	})

	loggedIn, pair, err := service.Login(context.Background(), "agent1", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != subject.ID {
		t.Fatalf("expected subject %q, got %q", subject.ID, loggedIn.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if pair.ExpiresInMs != 3600000 {
		t.Fatalf("expected standard TTL, got %d", pair.ExpiresInMs)
	}

	if _, found := registry.Get(context.Background(), subject.ID); !found {
		t.Fatal("expected a session record after login")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(logins) != 1 || logins[0] != subject.ID {
		t.Fatalf("expected one login event, got %v", logins)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	subject := testSubject(t, "agent1", "s3cret", domain.RoleAgent)
	inactive := testSubject(t, "agent2", "s3cret", domain.RoleAgent)
	inactive.Active = false
	service, _, _ := newTestService(t, subject, inactive)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "agent1", "wrong"},
		{"unknown user", "ghost", "s3cret"},
		{"inactive user", "agent2", "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := service.Login(ctx, tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRefreshThroughService(t *testing.T) {
	subject := testSubject(t, "agent1", "s3cret", domain.RoleAgent)
	service, _, _ := newTestService(t, subject)
	ctx := context.Background()

	_, pair, err := service.Login(ctx, "agent1", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, newPair, err := service.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.ID != subject.ID {
		t.Fatalf("expected subject %q, got %q", subject.ID, refreshed.ID)
	}
	if newPair.AccessToken == pair.AccessToken {
		t.Fatal("expected a rotated access token")
	}

	if _, _, err := service.Refresh(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCreateSubjectThenLogin(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateSubject(ctx, "agent1", "Agent One", "s3cret", domain.RoleAgent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || !created.Active {
		t.Fatalf("expected an active subject with an id, got %+v", created)
	}
	if created.PasswordHash == "s3cret" || created.PasswordHash == "" {
		t.Fatal("expected the password to be stored hashed")
	}

	// the stored hash must verify the original password end to end
	loggedIn, pair, err := service.Login(ctx, "agent1", "s3cret")
	if err != nil {
		t.Fatalf("login after create: %v", err)
	}
	if loggedIn.ID != created.ID || pair.AccessToken == "" {
		t.Fatal("expected the provisioned subject to log in")
	}
}

func TestCreateSubjectRejectsDuplicateUsername(t *testing.T) {
	subject := testSubject(t, "agent1", "s3cret", domain.RoleAgent)
	service, _, _ := newTestService(t, subject)

	if _, err := service.CreateSubject(context.Background(), "agent1", "Other", "pw", domain.RoleAgent); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	subject := testSubject(t, "agent1", "s3cret", domain.RoleAgent)
	service, registry, dispatcher := newTestService(t, subject)
	ctx := context.Background()

	var mu sync.Mutex
	var logouts []string
	dispatcher.Subscribe(events.EventSubjectLoggedOut, func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		logouts = append(logouts, event.SubjectID)
		return nil
	})

	if _, _, err := service.Login(ctx, "agent1", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := service.Logout(ctx, subject); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, found := registry.Get(ctx, subject.ID); found {
		t.Fatal("expected session record to be gone after logout")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(logouts) != 1 {
		t.Fatalf("expected one logout event, got %v", logouts)
	}
}
