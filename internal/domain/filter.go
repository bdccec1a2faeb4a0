package domain

// FilterSpec is a filter as supplied by the client, e.g. {"CITY", "EQ", "London"}.
type FilterSpec struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// ConferenceField is a queryable conference column.
type ConferenceField string

const (
	ConferenceFieldName         ConferenceField = "name"
	ConferenceFieldCity         ConferenceField = "city"
	ConferenceFieldTopics       ConferenceField = "topics"
	ConferenceFieldMonth        ConferenceField = "month"
	ConferenceFieldMaxAttendees ConferenceField = "max_attendees"
)

// FilterOperator is a comparison operator in a conference filter.
type FilterOperator string

const (
	OpEqual          FilterOperator = "="
	OpGreater        FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpLess           FilterOperator = "<"
	OpLessOrEqual    FilterOperator = "<="
	OpNotEqual       FilterOperator = "!="
)

// IsInequality reports whether op counts toward the single-inequality-field limit.
func (op FilterOperator) IsInequality() bool {
	return op != OpEqual
}

// ConferenceFilter is a resolved filter. Value is a string for text fields
// and an int for numeric fields.
type ConferenceFilter struct {
	Field    ConferenceField
	Operator FilterOperator
	Value    any
}

// ConferenceQuery is a validated conference query: filters joined with AND
// and the ordering to apply.
type ConferenceQuery struct {
	Filters []ConferenceFilter
	OrderBy []ConferenceField
}
