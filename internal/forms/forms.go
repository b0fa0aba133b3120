// Package forms evaluates the configurable stall enquiry form: which fields are
// visible for a given set of answers, and whether a submission is complete.
package forms

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"event-ledger-service/internal/models"
)

type Kind int

const (
	Text Kind = iota
	Textarea
	SingleChoice
	MultiChoice
)

// Condition makes a field visible only when another field's answer matches
type Condition struct {
	FieldID  int64
	Expected string
}

type Field struct {
	ID       int64
	Label    string
	Kind     Kind
	Options  []string
	Required bool
	Order    int
	When     *Condition
}

// Responses maps field id to answer: a string for text and single choice
// fields, a []string for multi choice fields.
type Responses map[int64]any

// FieldError describes one rejected answer
type FieldError struct {
	FieldID int64  `json:"field_id"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

// ParseKind maps a stored field type to its Kind.
func ParseKind(fieldType string) (Kind, error) {
	switch fieldType {
	case models.FieldTypeText:
		return Text, nil
	case models.FieldTypeTextarea:
		return Textarea, nil
	case models.FieldTypeSingleChoice:
		return SingleChoice, nil
	case models.FieldTypeMultiChoice:
		return MultiChoice, nil
	}
	return 0, fmt.Errorf("unknown field type %q", fieldType)
}

func (k Kind) HasOptions() bool {
	return k == SingleChoice || k == MultiChoice
}

// FromModel converts a stored field configuration row.
func FromModel(m *models.StallEnquiryField) (Field, error) {
	kind, err := ParseKind(m.FieldType)
	if err != nil {
		return Field{}, err
	}
	f := Field{
		ID:       m.ID,
		Label:    m.Label,
		Kind:     kind,
		Options:  m.Options,
		Required: m.IsRequired,
		Order:    m.DisplayOrder,
	}
	if m.VisibleWhenFieldID != nil {
		f.When = &Condition{FieldID: *m.VisibleWhenFieldID}
		if m.VisibleWhenValue != nil {
			f.When.Expected = *m.VisibleWhenValue
		}
	}
	return f, nil
}

// Form is an ordered set of fields
type Form struct {
	fields []Field
	byID   map[int64]Field
}

func NewForm(fields []Field) *Form {
	sorted := slices.Clone(fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	byID := make(map[int64]Field, len(sorted))
	for _, f := range sorted {
		byID[f.ID] = f
	}
	return &Form{fields: sorted, byID: byID}
}

func (f *Form) Fields() []Field {
	return f.fields
}

// Visible reports whether field id is shown for the given answers. A field
// conditioned on a hidden field is hidden too. Conditions referring to a field
// that is not part of the form never match.
func (f *Form) Visible(id int64, responses Responses) bool {
	return f.visible(id, responses, map[int64]bool{})
}

func (f *Form) visible(id int64, responses Responses, seen map[int64]bool) bool {
	field, ok := f.byID[id]
	if !ok {
		return false
	}
	if field.When == nil {
		return true
	}
	if seen[id] {
		return false
	}
	seen[id] = true

	if !f.visible(field.When.FieldID, responses, seen) {
		return false
	}
	return answerMatches(responses[field.When.FieldID], field.When.Expected)
}

func answerMatches(answer any, expected string) bool {
	switch v := answer.(type) {
	case string:
		return v == expected
	case []string:
		return slices.Contains(v, expected)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == expected {
				return true
			}
		}
	case bool:
		return strconv.FormatBool(v) == expected
	}
	return false
}

// Validate checks a submission and returns the cleaned answers: answers to
// hidden or unknown fields are dropped and multi choice answers are
// normalised to []string.
func (f *Form) Validate(responses Responses) (Responses, []FieldError) {
	cleaned := make(Responses)
	var errs []FieldError

	for _, field := range f.fields {
		if !f.Visible(field.ID, responses) {
			continue
		}
		answer, present := responses[field.ID]
		value, err := normalise(field, answer, present)
		if err != "" {
			errs = append(errs, FieldError{FieldID: field.ID, Label: field.Label, Message: err})
			continue
		}
		if value != nil {
			cleaned[field.ID] = value
		}
	}
	return cleaned, errs
}

func normalise(field Field, answer any, present bool) (any, string) {
	switch field.Kind {
	case Text, Textarea, SingleChoice:
		s, ok := answer.(string)
		if present && answer != nil && !ok {
			return nil, "must be a string"
		}
		s = strings.TrimSpace(s)
		if s == "" {
			if field.Required {
				return nil, "is required"
			}
			return nil, ""
		}
		if field.Kind == SingleChoice && !slices.Contains(field.Options, s) {
			return nil, fmt.Sprintf("%q is not an option", s)
		}
		return s, ""
	case MultiChoice:
		values, ok := toStrings(answer)
		if present && answer != nil && !ok {
			return nil, "must be a list of options"
		}
		if len(values) == 0 {
			if field.Required {
				return nil, "is required"
			}
			return nil, ""
		}
		for _, v := range values {
			if !slices.Contains(field.Options, v) {
				return nil, fmt.Sprintf("%q is not an option", v)
			}
		}
		return values, ""
	}
	return nil, "unsupported field"
}

func toStrings(answer any) ([]string, bool) {
	switch v := answer.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
