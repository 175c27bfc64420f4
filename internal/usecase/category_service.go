package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

// maxCandidates is how many scored alternatives are reported with a match.
const maxCandidates = 3

// categorySnapshot is the immutable in-memory view of the category records.
// It is replaced wholesale on reload; readers never see a partial rebuild.
type categorySnapshot struct {
	records    []*domain.CategoryRecord
	byNormName map[string]*domain.CategoryRecord
	loadedAt   time.Time
}

// CategoryServiceConfig holds inference engine tunables.
type CategoryServiceConfig struct {
	// HintThreshold is the minimum similarity for a category_hint match.
	// Inherited default is 0.6; there is no documented calibration beyond
	// observed production behavior, so it stays configurable.
	HintThreshold float64
	DebugLogging  bool
}

// CategoryService resolves item attributes to a depreciation category using
// four ordered strategies: manual_override, category_hint, examples_keyword,
// default. Every path returns a usable match; inference never errors.
type CategoryService struct {
	store         domain.CategoryStore
	hintThreshold float64
	debugLogging  bool

	mu       sync.RWMutex
	snapshot *categorySnapshot
}

// NewCategoryService creates a category inference service backed by store.
// A nil store is tolerated: inference then works off the sentinel-only
// snapshot.
func NewCategoryService(store domain.CategoryStore, cfg CategoryServiceConfig) *CategoryService {
	threshold := cfg.HintThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	return &CategoryService{
		store:         store,
		hintThreshold: threshold,
		debugLogging:  cfg.DebugLogging,
	}
}

// buildSnapshot derives matching fields for each row and injects the sentinel
// record when the store does not carry one.
func buildSnapshot(rows []domain.CategoryRow) *categorySnapshot {
	snap := &categorySnapshot{
		byNormName: make(map[string]*domain.CategoryRecord, len(rows)+1),
		loadedAt:   time.Now(),
	}

	hasSentinel := false
	for _, row := range rows {
		record := &domain.CategoryRecord{
			CategoryRow:    row,
			NormalizedName: NormalizeText(row.Name),
			NameTokens:     Tokenize(row.Name),
			ExampleTokens:  TokenSet(row.ExamplesText),
		}
		if record.Sentinel() {
			hasSentinel = true
		}
		snap.records = append(snap.records, record)
		snap.byNormName[record.NormalizedName] = record
	}

	if !hasSentinel {
		sentinel := &domain.CategoryRecord{
			CategoryRow:    domain.CategoryRow{Name: domain.SentinelCategoryName},
			NormalizedName: NormalizeText(domain.SentinelCategoryName),
			ExampleTokens:  map[string]bool{},
		}
		snap.records = append(snap.records, sentinel)
		snap.byNormName[sentinel.NormalizedName] = sentinel
	}
	return snap
}

// Reload reads all categories from the store and atomically swaps the
// snapshot. Returns the number of records loaded (sentinel included).
func (s *CategoryService) Reload(ctx context.Context) (int, error) {
	var rows []domain.CategoryRow
	if s.store != nil {
		var err error
		rows, err = s.store.ListCategories(ctx)
		if err != nil {
			// Degrade to the sentinel-only snapshot rather than fail
			log.Printf("[CATEGORY] store read failed, using sentinel-only snapshot: %v", err)
			rows = nil
		}
	}

	snap := buildSnapshot(rows)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	if s.debugLogging {
		log.Printf("[CATEGORY] snapshot reloaded: %d records", len(snap.records))
	}
	return len(snap.records), nil
}

// currentSnapshot returns the snapshot, loading it on first use.
func (s *CategoryService) currentSnapshot(ctx context.Context) *categorySnapshot {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap
	}

	s.Reload(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Infer resolves a category for the given attributes. Strategies are tried in
// fixed priority order; the first applicable one wins.
func (s *CategoryService) Infer(ctx context.Context, query domain.CategoryQuery) *domain.CategoryMatch {
	snap := s.currentSnapshot(ctx)

	// 1. manual_override
	if query.AllowOverride && query.ExplicitCategory != "" {
		return s.inferOverride(snap, query.ExplicitCategory)
	}

	// 2. category_hint
	if strings.TrimSpace(query.CategoryHint) != "" {
		return s.inferFromHint(snap, query.CategoryHint)
	}

	// 3. examples_keyword
	if match := s.inferFromExamples(snap, query); match != nil {
		return match
	}

	// 4. default
	return defaultMatch(nil)
}

// inferOverride looks up the explicit name by exact normalized match; an
// unknown name keeps the caller's text with a zero rate.
func (s *CategoryService) inferOverride(snap *categorySnapshot, explicit string) *domain.CategoryMatch {
	name := explicit
	rate := 0.0
	if record, ok := snap.byNormName[NormalizeText(explicit)]; ok {
		name = record.Name
		rate = record.DepreciationRate
	}
	return &domain.CategoryMatch{
		CategoryName:     name,
		DepreciationRate: rate,
		StrategyUsed:     domain.StrategyManualOverride,
		Candidates:       []domain.CategoryCandidate{{Name: name, Score: 1, Rate: rate}},
	}
}

// inferFromHint matches the hint against category names: exact normalized
// equality scores 1.0, mutual containment forces 0.95, anything else scores
// by 3-gram Jaccard similarity. Below the threshold the default outcome is
// returned but the top candidates are still reported.
func (s *CategoryService) inferFromHint(snap *categorySnapshot, hint string) *domain.CategoryMatch {
	normHint := NormalizeText(hint)

	if record, ok := snap.byNormName[normHint]; ok {
		return &domain.CategoryMatch{
			CategoryName:     record.Name,
			DepreciationRate: record.DepreciationRate,
			StrategyUsed:     domain.StrategyCategoryHint,
			Candidates:       []domain.CategoryCandidate{{Name: record.Name, Score: 1, Rate: record.DepreciationRate}},
		}
	}

	var scored []domain.CategoryCandidate
	for _, record := range snap.records {
		if record.Sentinel() || record.NormalizedName == "" {
			continue
		}
		var score float64
		if strings.Contains(record.NormalizedName, normHint) || strings.Contains(normHint, record.NormalizedName) {
			score = 0.95
		} else {
			score = TrigramJaccard(record.NormalizedName, normHint)
		}
		scored = append(scored, domain.CategoryCandidate{
			Name:  record.Name,
			Score: score,
			Rate:  record.DepreciationRate,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Rate != scored[j].Rate {
			return scored[i].Rate < scored[j].Rate
		}
		return scored[i].Name < scored[j].Name
	})

	candidates := topCandidates(scored)
	if len(scored) == 0 || scored[0].Score < s.hintThreshold {
		if s.debugLogging {
			log.Printf("[CATEGORY] hint %q below threshold %.2f", hint, s.hintThreshold)
		}
		return defaultMatch(candidates)
	}

	best := scored[0]
	return &domain.CategoryMatch{
		CategoryName:     best.Name,
		DepreciationRate: best.Rate,
		StrategyUsed:     domain.StrategyCategoryHint,
		Candidates:       candidates,
	}
}

// keywordScore is one category's overlap against the item's tokens.
type keywordScore struct {
	record        *domain.CategoryRecord
	matchedTokens []string
	overlap       int
	nameTokenHit  bool
}

// inferFromExamples counts token overlap between the item's free text and
// each category's example tokens. Ordering on equal overlap is load-bearing:
// a category whose own first name token was matched ranks higher, then the
// lower depreciation rate wins.
func (s *CategoryService) inferFromExamples(snap *categorySnapshot, query domain.CategoryQuery) *domain.CategoryMatch {
	text := strings.Join([]string{query.Description, query.Model, query.Room}, " ")
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var scores []keywordScore
	for _, record := range snap.records {
		if record.Sentinel() {
			continue
		}

		var matched []string
		seen := make(map[string]bool)
		for _, token := range tokens {
			if record.ExampleTokens[token] && !seen[token] {
				matched = append(matched, token)
				seen[token] = true
			}
		}
		if len(matched) == 0 {
			continue
		}

		nameTokenHit := len(record.NameTokens) > 0 && seen[record.NameTokens[0]]
		scores = append(scores, keywordScore{
			record:        record,
			matchedTokens: matched,
			overlap:       len(matched),
			nameTokenHit:  nameTokenHit,
		})
	}

	if len(scores) == 0 {
		return defaultMatch(nil)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].overlap != scores[j].overlap {
			return scores[i].overlap > scores[j].overlap
		}
		if scores[i].nameTokenHit != scores[j].nameTokenHit {
			return scores[i].nameTokenHit
		}
		if scores[i].record.DepreciationRate != scores[j].record.DepreciationRate {
			return scores[i].record.DepreciationRate < scores[j].record.DepreciationRate
		}
		return scores[i].record.Name < scores[j].record.Name
	})

	var candidates []domain.CategoryCandidate
	for i, sc := range scores {
		if i == maxCandidates {
			break
		}
		candidates = append(candidates, domain.CategoryCandidate{
			Name:  sc.record.Name,
			Score: float64(sc.overlap),
			Rate:  sc.record.DepreciationRate,
		})
	}

	best := scores[0]
	if s.debugLogging {
		log.Printf("[CATEGORY] keyword match %q (overlap=%d tokens=%v)", best.record.Name, best.overlap, best.matchedTokens)
	}
	return &domain.CategoryMatch{
		CategoryName:     best.record.Name,
		DepreciationRate: best.record.DepreciationRate,
		StrategyUsed:     domain.StrategyExamplesKeyword,
		MatchedTokens:    best.matchedTokens,
		Candidates:       candidates,
	}
}

// defaultMatch is the sentinel outcome, optionally carrying the candidates a
// failed strategy still wants to report.
func defaultMatch(candidates []domain.CategoryCandidate) *domain.CategoryMatch {
	if candidates == nil {
		candidates = []domain.CategoryCandidate{}
	}
	return &domain.CategoryMatch{
		CategoryName:     domain.SentinelCategoryName,
		DepreciationRate: 0,
		StrategyUsed:     domain.StrategyDefault,
		Candidates:       candidates,
	}
}

// topCandidates truncates a sorted score list to the reported maximum.
func topCandidates(scored []domain.CategoryCandidate) []domain.CategoryCandidate {
	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	out := make([]domain.CategoryCandidate, len(scored))
	copy(out, scored)
	return out
}
