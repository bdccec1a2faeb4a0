package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type sessionRepository struct {
	db dbtx
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionSelect = `
		SELECT id, conference_id, name, highlights, speaker, duration_minutes,
			type_of_session, date, start_time, created_at
		FROM sessions
	`

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	err := row.Scan(
		&s.ID, &s.ConferenceID, &s.Name, &s.Highlights, &s.Speaker, &s.DurationMins,
		pq.Array(&s.TypeOfSession), &s.Date, &s.StartTime, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.TypeOfSession = nonNilStrings(s.TypeOfSession)
	return s, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, conference_id, name, highlights, speaker, duration_minutes,
			type_of_session, date, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ConferenceID, s.Name, s.Highlights, s.Speaker, s.DurationMins,
		pq.Array(nonNilStrings(s.TypeOfSession)), s.Date, s.StartTime, s.CreatedAt,
	)
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, sessionSelect+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListByConference(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	return r.list(ctx, sessionSelect+`WHERE conference_id = $1 ORDER BY date, start_time, name`, conferenceID)
}

func (r *sessionRepository) ListByConferenceAndType(ctx context.Context, conferenceID, sessionType string) ([]*domain.Session, error) {
	return r.list(ctx,
		sessionSelect+`WHERE conference_id = $1 AND $2 = ANY(type_of_session) ORDER BY date, start_time, name`,
		conferenceID, sessionType,
	)
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	return r.list(ctx, sessionSelect+`WHERE speaker = $1 ORDER BY date, start_time, name`, speaker)
}

func (r *sessionRepository) ListAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Session, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	sessions, err := r.list(ctx,
		sessionSelect+`ORDER BY date, start_time, name, id LIMIT $1 OFFSET $2`,
		p.PageSize, p.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepository) ListBefore(ctx context.Context, date time.Time) ([]*domain.Session, error) {
	return r.list(ctx, sessionSelect+`WHERE date < $1 ORDER BY date, start_time, name`, date)
}

func (r *sessionRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Session, error) {
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}
	return r.list(ctx, sessionSelect+`WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *sessionRepository) CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE conference_id = $1 AND speaker = $2`,
		conferenceID, speaker,
	).Scan(&n)
	return n, err
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
