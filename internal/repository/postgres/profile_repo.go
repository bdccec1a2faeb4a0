package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type profileRepository struct {
	db dbtx
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `user_id, display_name, main_email, tee_shirt_size,
		conference_ids_to_attend, session_ids_wishlist, created_at, updated_at`

func (r *profileRepository) Ensure(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize),
		pq.Array(nonNilStrings(p.ConferenceIDsToAttend)), pq.Array(nonNilStrings(p.SessionIDsWishlist)),
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

func (r *profileRepository) GetForUpdate(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *profileRepository) get(ctx context.Context, query, userID string) (*domain.Profile, error) {
	p := &domain.Profile{}
	var size string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.DisplayName, &p.MainEmail, &size,
		pq.Array(&p.ConferenceIDsToAttend), pq.Array(&p.SessionIDsWishlist),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.TeeShirtSize = domain.TeeShirtSize(size)
	p.ConferenceIDsToAttend = nonNilStrings(p.ConferenceIDsToAttend)
	p.SessionIDsWishlist = nonNilStrings(p.SessionIDsWishlist)
	return p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, main_email = $3, tee_shirt_size = $4,
			conference_ids_to_attend = $5, session_ids_wishlist = $6, updated_at = $7
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize),
		pq.Array(nonNilStrings(p.ConferenceIDsToAttend)), pq.Array(nonNilStrings(p.SessionIDsWishlist)),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *profileRepository) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, display_name FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// expectOneRow turns an UPDATE that matched nothing into ErrNotFound.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
