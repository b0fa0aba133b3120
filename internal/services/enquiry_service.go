package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/forms"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type EnquiryService struct {
	db          *sql.DB
	enquiryRepo repositories.EnquiryRepository
}

func NewEnquiryService(db *sql.DB, enquiryRepo repositories.EnquiryRepository) *EnquiryService {
	return &EnquiryService{db: db, enquiryRepo: enquiryRepo}
}

type CreateFieldInput struct {
	Label              string   `json:"label" validate:"required,max=255"`
	FieldType          string   `json:"field_type" validate:"required,oneof=text textarea single_choice multi_choice"`
	Options            []string `json:"options" validate:"omitempty,dive,required"`
	IsRequired         bool     `json:"is_required"`
	DisplayOrder       int      `json:"display_order"`
	VisibleWhenFieldID *int64   `json:"visible_when_field_id"`
	VisibleWhenValue   *string  `json:"visible_when_value"`
}

type SubmitEnquiryInput struct {
	Name      string         `json:"name" validate:"required,max=255"`
	Mobile    string         `json:"mobile" validate:"required,phone"`
	Responses map[string]any `json:"responses"`
}

func (s *EnquiryService) CreateField(ctx context.Context, input CreateFieldInput) (*models.StallEnquiryField, error) {
	verr := validateStruct(input)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	kind, err := forms.ParseKind(input.FieldType)
	if err != nil {
		return nil, invalid("field_type", err.Error())
	}
	if kind.HasOptions() && len(input.Options) == 0 {
		verr.add("options", "is required for choice fields")
	}
	if !kind.HasOptions() && len(input.Options) > 0 {
		verr.add("options", "only choice fields take options")
	}

	if input.VisibleWhenFieldID != nil {
		if input.VisibleWhenValue == nil || *input.VisibleWhenValue == "" {
			verr.add("visible_when_value", "is required with visible_when_field_id")
		}
		fields, err := s.enquiryRepo.ListActiveFields(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list enquiry fields: %w", err)
		}
		idx := slices.IndexFunc(fields, func(f *models.StallEnquiryField) bool { return f.ID == *input.VisibleWhenFieldID })
		switch {
		case idx < 0:
			verr.add("visible_when_field_id", "unknown field")
		case input.VisibleWhenValue != nil && len(fields[idx].Options) > 0 &&
			!slices.Contains(fields[idx].Options, *input.VisibleWhenValue):
			verr.add("visible_when_value", "is not an option of the referenced field")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	field := &models.StallEnquiryField{
		Label:              input.Label,
		FieldType:          input.FieldType,
		Options:            input.Options,
		IsRequired:         input.IsRequired,
		DisplayOrder:       input.DisplayOrder,
		VisibleWhenFieldID: input.VisibleWhenFieldID,
		VisibleWhenValue:   input.VisibleWhenValue,
		IsActive:           true,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.enquiryRepo.InsertField(ctx, tx, field)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create enquiry field: %w", err)
	}
	return field, nil
}

// ListFields returns the active form fields in display order.
func (s *EnquiryService) ListFields(ctx context.Context) ([]*models.StallEnquiryField, error) {
	fields, err := s.enquiryRepo.ListActiveFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiry fields: %w", err)
	}
	return fields, nil
}

// SubmitEnquiry validates the answers against the active form and stores
// only the answers to visible fields.
func (s *EnquiryService) SubmitEnquiry(ctx context.Context, input SubmitEnquiryInput) (*models.StallEnquiry, error) {
	verr := validateStruct(input)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	form, err := s.loadForm(ctx)
	if err != nil {
		return nil, err
	}

	responses := make(forms.Responses, len(input.Responses))
	for key, answer := range input.Responses {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			verr.add("responses."+key, "unknown field")
			continue
		}
		responses[id] = answer
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	cleaned, fieldErrs := form.Validate(responses)
	for _, fe := range fieldErrs {
		verr.add(fmt.Sprintf("responses.%d", fe.FieldID), fe.Label+" "+fe.Message)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to encode responses: %w", err)
	}
	enquiry := &models.StallEnquiry{
		Name:      input.Name,
		Mobile:    input.Mobile,
		Responses: raw,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.enquiryRepo.InsertEnquiry(ctx, tx, enquiry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit enquiry: %w", err)
	}
	return enquiry, nil
}

func (s *EnquiryService) loadForm(ctx context.Context) (*forms.Form, error) {
	rows, err := s.ListFields(ctx)
	if err != nil {
		return nil, err
	}
	fields := make([]forms.Field, 0, len(rows))
	for _, row := range rows {
		f, err := forms.FromModel(row)
		if err != nil {
			return nil, fmt.Errorf("failed to load enquiry field %d: %w", row.ID, err)
		}
		fields = append(fields, f)
	}
	return forms.NewForm(fields), nil
}

func (s *EnquiryService) ListEnquiries(ctx context.Context) ([]*models.StallEnquiry, error) {
	enquiries, err := s.enquiryRepo.ListEnquiries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiries: %w", err)
	}
	return enquiries, nil
}
