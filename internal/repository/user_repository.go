package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-platform/internal/domain"
)

// UserRepository defines persistence access for platform accounts. The
// refresh-token operations are scoped to that single column so the session
// layer never rewrites the rest of the record by accident.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context, limit, offset int, ascending bool) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, profile_picture, is_admin, is_writer, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.IsAdmin,
		&user.IsWriter,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, profile_picture, is_admin, is_writer)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfilePicture,
		user.IsAdmin,
		user.IsWriter,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET username=$1, email=$2, password_hash=$3, profile_picture=$4, is_admin=$5, is_writer=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfilePicture,
		user.IsAdmin,
		user.IsWriter,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

// GetByRefreshToken locates the user that currently holds the exact token
// value. Superseded tokens match no row and surface as pgx.ErrNoRows.
func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token=$1`, token))
}

func (r *userRepository) List(ctx context.Context, limit, offset int, ascending bool) ([]*domain.User, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ` + direction + ` LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since).Scan(&count)
	return count, err
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token=$1, updated_at=NOW() WHERE id=$2`, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RotateRefreshToken swaps the stored token only while it still equals
// oldToken. Two refreshes racing on the same token get exactly one winner;
// the loser sees pgx.ErrNoRows.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	const query = `UPDATE users SET refresh_token=$1, updated_at=NOW() WHERE id=$2 AND refresh_token=$3`

	cmd, err := r.pool.Exec(ctx, query, newToken, id, oldToken)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token=NULL, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
