package services

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
)

// CalculatorSvcFacade computes per-line and document-level monetary totals.
// These are pure reads: no locks, safe against a read replica.
type CalculatorSvcFacade interface {
	// ComputeLine computes subtotal/discount/tax/total for one line.
	ComputeLine(ctx context.Context, req dto.ComputeLineRequest) (*dto.LineComputation, error)

	// ComputeDocumentTotals sums each line's components independently.
	ComputeDocumentTotals(ctx context.Context, lines []domain.DocumentLine) (*dto.DocumentTotals, error)
}
