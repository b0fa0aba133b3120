package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/models"
)

// IngestionResult reports a bulk import. Valid rows are stored even when
// other rows are rejected.
type IngestionResult struct {
	Success      bool           `json:"success"`
	RecordsCount int            `json:"records_count"`
	Errors       []string       `json:"errors,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// ImportProducts adds a batch of products to one stall.
func (s *StallService) ImportProducts(ctx context.Context, stallID int64, rows []ProductInput) (*IngestionResult, error) {
	if len(rows) == 0 {
		return nil, invalid("products", "is required")
	}
	if _, err := s.GetStall(ctx, stallID); err != nil {
		return nil, err
	}

	result := &IngestionResult{Details: make(map[string]any)}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var productIDs []int64
		for i, input := range rows {
			product, verr := newProduct(stallID, input)
			if len(verr.Fields) > 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid product at row %d: %s", i+1, describeFields(verr)))
				continue
			}

			if err := s.productRepo.InsertProduct(ctx, tx, product); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to insert product at row %d: %v", i+1, err))
				continue
			}
			productIDs = append(productIDs, product.ID)
			result.RecordsCount++
		}

		if result.RecordsCount == 0 {
			return nil
		}
		return s.audit(ctx, tx, "stall", stallID, models.AuditActionImported, map[string]any{
			"total_records": len(rows),
			"successful":    result.RecordsCount,
			"failed":        len(result.Errors),
			"product_ids":   productIDs,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import products: %w", err)
	}

	result.Success = len(result.Errors) == 0
	result.Details["total_records"] = len(rows)
	result.Details["successful"] = result.RecordsCount
	result.Details["failed"] = len(result.Errors)
	return result, nil
}

func describeFields(verr *ValidationError) string {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+verr.Fields[k])
	}
	return strings.Join(parts, "; ")
}
