package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type conferenceRepository struct {
	db dbtx
}

func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{db: db}
}

const conferenceColumns = `c.id, c.organizer_user_id, c.name, c.description, c.topics, c.city,
		c.start_date, c.end_date, c.month, c.max_attendees, c.seats_available, c.created_at, c.updated_at`

// conferenceSelect reads conferences with the organizer's display name.
const conferenceSelect = `
		SELECT ` + conferenceColumns + `, COALESCE(p.display_name, '')
		FROM conferences c
		LEFT JOIN profiles p ON p.user_id = c.organizer_user_id
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner, withOrganizer bool) (*domain.Conference, error) {
	c := &domain.Conference{}
	var start, end sql.NullTime
	dest := []any{
		&c.ID, &c.OrganizerUserID, &c.Name, &c.Description, pq.Array(&c.Topics), &c.City,
		&start, &end, &c.Month, &c.MaxAttendees, &c.SeatsAvailable, &c.CreatedAt, &c.UpdatedAt,
	}
	if withOrganizer {
		dest = append(dest, &c.OrganizerDisplayName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	c.Topics = nonNilStrings(c.Topics)
	return c, nil
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (id, organizer_user_id, name, description, topics, city,
			start_date, end_date, month, max_attendees, seats_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OrganizerUserID, c.Name, c.Description, pq.Array(nonNilStrings(c.Topics)), c.City,
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	c, err := scanConference(r.db.QueryRowContext(ctx, conferenceSelect+`WHERE c.id = $1`, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetForUpdate locks only the conference row; FOR UPDATE cannot be applied
// to the nullable side of the organizer join.
func (r *conferenceRepository) GetForUpdate(ctx context.Context, id string) (*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences c WHERE c.id = $1 FOR UPDATE`
	c, err := scanConference(r.db.QueryRowContext(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) Update(ctx context.Context, c *domain.Conference) error {
	query := `
		UPDATE conferences
		SET name = $2, description = $3, topics = $4, city = $5, start_date = $6, end_date = $7,
			month = $8, max_attendees = $9, seats_available = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, pq.Array(nonNilStrings(c.Topics)), c.City, c.StartDate, c.EndDate,
		c.Month, c.MaxAttendees, c.SeatsAvailable, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Conference, error) {
	return r.list(ctx, conferenceSelect+`WHERE c.organizer_user_id = $1 ORDER BY c.name, c.id`, userID)
}

func (r *conferenceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if len(ids) == 0 {
		return []*domain.Conference{}, nil
	}
	return r.list(ctx, conferenceSelect+`WHERE c.id = ANY($1)`, pq.Array(ids))
}

func (r *conferenceRepository) Query(ctx context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	where, args, err := buildConferenceWhere(q.Filters)
	if err != nil {
		return nil, err
	}
	order, err := buildConferenceOrder(q.OrderBy)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, conferenceSelect+where+order, args...)
}

func (r *conferenceRepository) ListNamesWithSeatsBetween(ctx context.Context, min, max int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM conferences WHERE seats_available > $1 AND seats_available <= $2 ORDER BY name`,
		min, max,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *conferenceRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Conference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	confs := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows, true)
		if err != nil {
			return nil, err
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}

// conferenceColumn maps a queryable field to its column. Only these columns
// ever reach generated SQL.
func conferenceColumn(f domain.ConferenceField) (string, error) {
	switch f {
	case domain.ConferenceFieldName:
		return "c.name", nil
	case domain.ConferenceFieldCity:
		return "c.city", nil
	case domain.ConferenceFieldTopics:
		return "c.topics", nil
	case domain.ConferenceFieldMonth:
		return "c.month", nil
	case domain.ConferenceFieldMaxAttendees:
		return "c.max_attendees", nil
	}
	return "", fmt.Errorf("%w: unknown field %q", domain.ErrInvalidFilter, f)
}

func sqlOperator(op domain.FilterOperator) (string, error) {
	switch op {
	case domain.OpEqual, domain.OpGreater, domain.OpGreaterOrEqual, domain.OpLess, domain.OpLessOrEqual:
		return string(op), nil
	case domain.OpNotEqual:
		return "<>", nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidFilter, op)
}

// buildConferenceWhere ANDs the filters. A topics filter matches when any
// topic satisfies it, except != which requires that no topic equals the value.
func buildConferenceWhere(filters []domain.ConferenceFilter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		col, err := conferenceColumn(f.Field)
		if err != nil {
			return "", nil, err
		}
		op, err := sqlOperator(f.Operator)
		if err != nil {
			return "", nil, err
		}
		args = append(args, f.Value)
		n := len(args)
		switch {
		case f.Field != domain.ConferenceFieldTopics:
			clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, op, n))
		case f.Operator == domain.OpEqual:
			clauses = append(clauses, fmt.Sprintf("$%d = ANY(%s)", n, col))
		case f.Operator == domain.OpNotEqual:
			clauses = append(clauses, fmt.Sprintf("NOT ($%d = ANY(%s))", n, col))
		default:
			clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(%s) AS t(topic) WHERE t.topic %s $%d)", col, op, n))
		}
	}
	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

func buildConferenceOrder(fields []domain.ConferenceField) (string, error) {
	cols := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, err := conferenceColumn(f)
		if err != nil {
			return "", err
		}
		cols = append(cols, col)
	}
	cols = append(cols, "c.id")
	return " ORDER BY " + strings.Join(cols, ", "), nil
}
