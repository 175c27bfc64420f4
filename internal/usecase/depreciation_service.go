package usecase

import (
	"context"
	"log"
	"math"

	"github.com/claimvalue/backend/internal/domain"
)

// DepreciationService batch-applies category inference to items, computing a
// per-item depreciation amount. Items fail independently; the batch call
// itself always succeeds.
type DepreciationService struct {
	categories *CategoryService
}

// NewDepreciationService creates a depreciation applicator over the inference
// engine.
func NewDepreciationService(categories *CategoryService) *DepreciationService {
	return &DepreciationService{categories: categories}
}

// Apply processes each item in order. Invalid items (missing id, negative or
// non-finite price) and unexpected per-item panics produce a default-outcome
// result for that item only.
func (s *DepreciationService) Apply(ctx context.Context, items []domain.DepreciationItem) []domain.DepreciationResult {
	results := make([]domain.DepreciationResult, 0, len(items))
	for _, item := range items {
		results = append(results, s.applyOne(ctx, item))
	}
	return results
}

// applyOne contains every failure mode of a single item.
func (s *DepreciationService) applyOne(ctx context.Context, item domain.DepreciationItem) (result domain.DepreciationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DEPRECIATION] item %q panicked: %v", item.ItemID, r)
			result = invalidItemResult(item.ItemID)
		}
	}()

	if item.ItemID == "" {
		return invalidItemResult(item.ItemID)
	}
	price := item.TotalReplacementPrice
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return invalidItemResult(item.ItemID)
	}

	match := s.categories.Infer(ctx, domain.CategoryQuery{
		Description:      item.Description,
		Model:            item.Model,
		Room:             item.Room,
		CategoryHint:     item.CategoryHint,
		ExplicitCategory: item.ExplicitCategory,
		AllowOverride:    item.AllowOverride,
	})

	amount := Round2(price * match.DepreciationRate)
	name := match.CategoryName
	rate := match.DepreciationRate

	return domain.DepreciationResult{
		ItemID:             item.ItemID,
		CategoryName:       &name,
		DepreciationRate:   &rate,
		DepreciationAmount: &amount,
		StrategyUsed:       match.StrategyUsed,
		Candidates:         match.Candidates,
	}
}

// invalidItemResult is the null-valued default outcome for a failed item.
func invalidItemResult(itemID string) domain.DepreciationResult {
	return domain.DepreciationResult{
		ItemID:       itemID,
		StrategyUsed: domain.StrategyDefault,
		Candidates:   []domain.CategoryCandidate{},
	}
}
