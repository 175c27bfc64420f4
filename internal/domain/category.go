package domain

// SentinelCategoryName is the default category injected into every snapshot.
// It carries a zero depreciation rate and is returned whenever no inference
// strategy produces a qualifying match.
const SentinelCategoryName = "(Select)"

// Category inference strategies, tried in this priority order.
const (
	StrategyManualOverride  = "manual_override"
	StrategyCategoryHint    = "category_hint"
	StrategyExamplesKeyword = "examples_keyword"
	StrategyDefault         = "default"
)

// CategoryRow is one record as read from the category store.
type CategoryRow struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	DepreciationRate float64 `json:"depreciationRate"` // annual rate, 0..1
	UsefulLife       int     `json:"usefulLife"`       // years
	ExamplesText     string  `json:"examplesText"`
}

// CategoryRecord is a CategoryRow enriched with derived matching fields.
// Records live inside an immutable snapshot that is replaced wholesale on
// reload; they are never mutated in place.
type CategoryRecord struct {
	CategoryRow
	NormalizedName string
	NameTokens     []string
	ExampleTokens  map[string]bool
}

// Sentinel reports whether this is the injected default record.
func (r *CategoryRecord) Sentinel() bool {
	return r.Name == SentinelCategoryName
}

// CategoryCandidate is one scored alternative reported alongside a match.
type CategoryCandidate struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Rate  float64 `json:"rate"`
}

// CategoryQuery carries the free-text attributes the inference engine works on.
type CategoryQuery struct {
	Description      string `json:"description"`
	Model            string `json:"model"`
	Room             string `json:"room"`
	CategoryHint     string `json:"categoryHint"`
	ExplicitCategory string `json:"explicitCategory"`
	AllowOverride    bool   `json:"allowOverride"`
}

// CategoryMatch is the inference engine's output. It is always usable: when no
// strategy qualifies it names the sentinel category with a zero rate.
type CategoryMatch struct {
	CategoryName     string              `json:"categoryName"`
	DepreciationRate float64             `json:"depreciationRate"`
	StrategyUsed     string              `json:"strategyUsed"`
	MatchedTokens    []string            `json:"matchedTokens,omitempty"`
	Candidates       []CategoryCandidate `json:"candidates"`
}

// DepreciationItem is one entry in an applyDepreciation batch.
type DepreciationItem struct {
	ItemID                string  `json:"itemId"`
	TotalReplacementPrice float64 `json:"totalReplacementPrice"`
	Description           string  `json:"description"`
	Model                 string  `json:"model"`
	Room                  string  `json:"room"`
	CategoryHint          string  `json:"categoryHint"`
	ExplicitCategory      string  `json:"explicitCategory"`
	AllowOverride         bool    `json:"allowOverride"`
}

// DepreciationResult is the per-item outcome. Nil pointers mark items that
// failed validation; the batch as a whole never fails.
type DepreciationResult struct {
	ItemID             string              `json:"itemId"`
	CategoryName       *string             `json:"categoryName"`
	DepreciationRate   *float64            `json:"depreciationRate"`
	DepreciationAmount *float64            `json:"depreciationAmount"`
	StrategyUsed       string              `json:"strategyUsed"`
	Candidates         []CategoryCandidate `json:"candidates"`
}
