package postgres

import (
	"context"
	"database/sql"

	"whoisbot/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert stores the latest known profile of a user and bumps last_seen_at
func (r *UserRepo) Upsert(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, is_bot, first_name, last_name, username, language_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			is_bot = EXCLUDED.is_bot,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			language_code = EXCLUDED.language_code,
			last_seen_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.IsBot, user.FirstName, user.LastName, user.Username, user.LanguageCode,
	)
	return err
}

// DeleteNotSeenSince deletes users not seen for the given number of days
func (r *UserRepo) DeleteNotSeenSince(ctx context.Context, days int) (int64, error) {
	query := `
		DELETE FROM users
		WHERE last_seen_at < NOW() - INTERVAL '1 day' * $1
	`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
