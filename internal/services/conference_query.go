package services

import (
	"fmt"
	"strconv"
	"strings"

	"conferencecentral/internal/domain"
)

// lookupFilterField resolves a client field token.
func lookupFilterField(token string) (domain.ConferenceField, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "CITY":
		return domain.ConferenceFieldCity, true
	case "TOPIC":
		return domain.ConferenceFieldTopics, true
	case "MONTH":
		return domain.ConferenceFieldMonth, true
	case "MAX_ATTENDEES":
		return domain.ConferenceFieldMaxAttendees, true
	}
	return "", false
}

// lookupFilterOperator resolves a client operator token.
func lookupFilterOperator(token string) (domain.FilterOperator, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "EQ":
		return domain.OpEqual, true
	case "GT":
		return domain.OpGreater, true
	case "GTEQ":
		return domain.OpGreaterOrEqual, true
	case "LT":
		return domain.OpLess, true
	case "LTEQ":
		return domain.OpLessOrEqual, true
	case "NE":
		return domain.OpNotEqual, true
	}
	return "", false
}

func isNumericField(f domain.ConferenceField) bool {
	return f == domain.ConferenceFieldMonth || f == domain.ConferenceFieldMaxAttendees
}

// BuildConferenceQuery validates client filters and returns the query to run.
// At most one distinct field may use an inequality operator; when one does,
// results are ordered by that field and then by name.
func BuildConferenceQuery(specs []domain.FilterSpec) (domain.ConferenceQuery, error) {
	var (
		q               domain.ConferenceQuery
		inequalityField domain.ConferenceField
	)
	for i, spec := range specs {
		field, ok := lookupFilterField(spec.Field)
		if !ok {
			return domain.ConferenceQuery{}, fmt.Errorf("%w: filter %d has unknown field %q", domain.ErrInvalidFilter, i, spec.Field)
		}
		op, ok := lookupFilterOperator(spec.Operator)
		if !ok {
			return domain.ConferenceQuery{}, fmt.Errorf("%w: filter %d has unknown operator %q", domain.ErrInvalidFilter, i, spec.Operator)
		}
		if op.IsInequality() {
			if inequalityField != "" && inequalityField != field {
				return domain.ConferenceQuery{}, fmt.Errorf("%w: inequality filter is allowed on only one field", domain.ErrInvalidFilter)
			}
			inequalityField = field
		}

		var value any = spec.Value
		if isNumericField(field) {
			n, err := strconv.Atoi(strings.TrimSpace(spec.Value))
			if err != nil {
				return domain.ConferenceQuery{}, fmt.Errorf("%w: filter %d value %q is not an integer", domain.ErrInvalidFilter, i, spec.Value)
			}
			value = n
		}
		q.Filters = append(q.Filters, domain.ConferenceFilter{Field: field, Operator: op, Value: value})
	}

	if inequalityField != "" {
		q.OrderBy = append(q.OrderBy, inequalityField)
	}
	q.OrderBy = append(q.OrderBy, domain.ConferenceFieldName)
	return q, nil
}
