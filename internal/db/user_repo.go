package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"saasterkit/internal/types"
)

// UserRepo manages the local mirror of identity-provider accounts.
// Rows are keyed externally by clerk_user_id; all writes come from inbound
// user.* webhook events.
type UserRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewUserRepo creates a new UserRepo backed by the given database
// connection (pool or transaction).
func NewUserRepo(db DBTX, logger *slog.Logger) *UserRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepo{db: db, logger: logger}
}

// UpsertByClerkID creates or updates the user row for the given external
// user id. The upsert is atomic at the store; repeated deliveries of the
// same event converge on one row.
func (r *UserRepo) UpsertByClerkID(ctx context.Context, clerkUserID, email string) (*types.User, error) {
	var u types.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, clerk_user_id, email)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (clerk_user_id)
		 DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		 RETURNING id, clerk_user_id, email, created_at, updated_at`,
		uuid.NewString(), clerkUserID, email,
	).Scan(&u.ID, &u.ClerkUserID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to upsert user", err)
	}
	return &u, nil
}

// DeleteByClerkID removes the user row for the given external user id and
// returns the deleted record. A missing row is a not_found error.
func (r *UserRepo) DeleteByClerkID(ctx context.Context, clerkUserID string) (*types.User, error) {
	var u types.User
	err := r.db.QueryRow(ctx,
		`DELETE FROM users
		 WHERE clerk_user_id = $1
		 RETURNING id, clerk_user_id, email, created_at, updated_at`,
		clerkUserID,
	).Scan(&u.ID, &u.ClerkUserID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(
				types.ErrCodeNotFoundUser,
				fmt.Sprintf("no user with external id %q", clerkUserID),
				err,
			)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to delete user", err)
	}
	return &u, nil
}
