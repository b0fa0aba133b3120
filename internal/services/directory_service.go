package services

import (
	"context"
	"database/sql"
	"fmt"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type DirectoryService struct {
	db            *sql.DB
	directoryRepo repositories.DirectoryRepository
}

func NewDirectoryService(db *sql.DB, directoryRepo repositories.DirectoryRepository) *DirectoryService {
	return &DirectoryService{db: db, directoryRepo: directoryRepo}
}

type PanchayathInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	District string `json:"district" validate:"max=255"`
}

type WardInput struct {
	WardNumber int    `json:"ward_number" validate:"required,gt=0"`
	Name       string `json:"name" validate:"max=255"`
}

type SurveyContentInput struct {
	Title        string `json:"title" validate:"required,max=255"`
	Body         string `json:"body" validate:"required"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

func (s *DirectoryService) CreatePanchayath(ctx context.Context, input PanchayathInput) (*models.Panchayath, error) {
	if err := validateStruct(input).orNil(); err != nil {
		return nil, err
	}
	p := &models.Panchayath{Name: input.Name, District: input.District}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.directoryRepo.InsertPanchayath(ctx, tx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create panchayath: %w", err)
	}
	return p, nil
}

func (s *DirectoryService) ListPanchayaths(ctx context.Context) ([]*models.Panchayath, error) {
	panchayaths, err := s.directoryRepo.ListPanchayaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list panchayaths: %w", err)
	}
	return panchayaths, nil
}

func (s *DirectoryService) CreateWard(ctx context.Context, panchayathID int64, input WardInput) (*models.Ward, error) {
	if err := validateStruct(input).orNil(); err != nil {
		return nil, err
	}
	if _, err := s.directoryRepo.GetPanchayathByID(ctx, panchayathID); err != nil {
		return nil, fmt.Errorf("failed to get panchayath: %w", err)
	}

	w := &models.Ward{PanchayathID: panchayathID, WardNumber: input.WardNumber, Name: input.Name}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.directoryRepo.InsertWard(ctx, tx, w)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ward: %w", err)
	}
	return w, nil
}

func (s *DirectoryService) ListWards(ctx context.Context, panchayathID int64) ([]*models.Ward, error) {
	if _, err := s.directoryRepo.GetPanchayathByID(ctx, panchayathID); err != nil {
		return nil, fmt.Errorf("failed to get panchayath: %w", err)
	}
	wards, err := s.directoryRepo.ListWards(ctx, panchayathID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wards: %w", err)
	}
	return wards, nil
}

// CreateSurveyContent adds a carousel slide; slides are active unless
// is_active is sent as false.
func (s *DirectoryService) CreateSurveyContent(ctx context.Context, input SurveyContentInput) (*models.SurveyContent, error) {
	if err := validateStruct(input).orNil(); err != nil {
		return nil, err
	}
	c := &models.SurveyContent{
		Title:        input.Title,
		Body:         input.Body,
		ImageURL:     input.ImageURL,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive == nil || *input.IsActive,
	}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.directoryRepo.InsertSurveyContent(ctx, tx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create survey content: %w", err)
	}
	return c, nil
}

func (s *DirectoryService) ListSurveyContent(ctx context.Context) ([]*models.SurveyContent, error) {
	content, err := s.directoryRepo.ListActiveSurveyContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey content: %w", err)
	}
	return content, nil
}
