package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// SubjectRepository defines persistence access for subjects. It doubles as
// the subject directory consumed by the auth core.
type SubjectRepository interface {
	Create(ctx context.Context, subject *domain.Subject) error
	Update(ctx context.Context, subject *domain.Subject) error
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	GetByUsername(ctx context.Context, username string) (*domain.Subject, error)
}

type subjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository returns a Postgres-backed implementation.
func NewSubjectRepository(pool *pgxpool.Pool) SubjectRepository {
	return &subjectRepository{pool: pool}
}

func (r *subjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	const query = `
        INSERT INTO subjects (username, name, password_hash, role, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		subject.Username,
		subject.Name,
		subject.PasswordHash,
		subject.Role,
		subject.Active,
	).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
}

func (r *subjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	const query = `
        UPDATE subjects SET username=$1, name=$2, password_hash=$3, role=$4, active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		subject.Username,
		subject.Name,
		subject.PasswordHash,
		subject.Role,
		subject.Active,
		subject.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	const query = `
        SELECT id, username, name, password_hash, role, active, created_at, updated_at
        FROM subjects WHERE id=$1`

	return r.scanSubject(r.pool.QueryRow(ctx, query, id))
}

func (r *subjectRepository) GetByUsername(ctx context.Context, username string) (*domain.Subject, error) {
	const query = `
        SELECT id, username, name, password_hash, role, active, created_at, updated_at
        FROM subjects WHERE username=$1`

	return r.scanSubject(r.pool.QueryRow(ctx, query, username))
}

func (r *subjectRepository) scanSubject(row pgx.Row) (*domain.Subject, error) {
	var subject domain.Subject
	if err := row.Scan(
		&subject.ID,
		&subject.Username,
		&subject.Name,
		&subject.PasswordHash,
		&subject.Role,
		&subject.Active,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &subject, nil
}
