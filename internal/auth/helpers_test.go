package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// fakeRegistry is an in-memory session.Registry without TTL handling; tests
// drive supersession explicitly.
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

// fakeDirectory resolves subjects from a fixed set. Setting failWith makes
// every lookup fail, simulating a directory outage.
type fakeDirectory struct {
	mu       sync.Mutex
	subjects map[string]*domain.Subject
	failWith error
}

func newFakeDirectory(subjects ...*domain.Subject) *fakeDirectory {
	d := &fakeDirectory{subjects: make(map[string]*domain.Subject)}
	for _, subject := range subjects {
		d.subjects[subject.ID] = subject
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (*domain.Subject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return nil, d.failWith
	}
	subject, ok := d.subjects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return subject, nil
}

func (d *fakeDirectory) GetByUsername(_ context.Context, username string) (*domain.Subject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return nil, d.failWith
	}
	for _, subject := range d.subjects {
		if subject.Username == username {
			return subject, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (d *fakeDirectory) failLookups(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failWith = err
}

func (d *fakeDirectory) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subjects, id)
}

func agentSubject(id, username string) *domain.Subject {
	return &domain.Subject{
		ID:       id,
		Username: username,
		Name:     username,
		Role:     domain.RoleAgent,
		Active:   true,
	}
}

func adminSubject(id, username string) *domain.Subject {
	subject := agentSubject(id, username)
	subject.Role = domain.RoleAdmin
	return subject
}
