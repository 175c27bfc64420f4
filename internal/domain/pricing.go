package domain

import "time"

// Price criteria operators accepted by the validator.
const (
	OperatorBetween     = "between"
	OperatorLessThan    = "less_than"
	OperatorGreaterThan = "greater_than"
)

// SearchResult is a single hit returned by a search strategy.
// It is transient: produced for the current request and discarded after
// the trusted-domain filter and extraction pipeline have consumed it.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// PriceCriteria is the caller-supplied numeric constraint on candidate prices.
// Nil bounds are treated as absent (permissive on that side).
type PriceCriteria struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Operator string   `json:"operator"`
}

// ExtractedProduct is one priced candidate pulled from a fetched retailer page.
// Price holds the raw matched price text (e.g. "$1,299.99"); it is nil when no
// selector yielded a recognizable USD price. Immutable after creation.
type ExtractedProduct struct {
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Price       *string `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory"`
	PricerTag   string  `json:"pricerTag"`
}

// ValidationResponse is the full result of a validateProduct call and the unit
// stored in the result cache. Invariant: TotalFound == len(Products) and every
// product satisfies PriceCriteria.
type ValidationResponse struct {
	Query            string             `json:"query"`
	PriceCriteria    PriceCriteria      `json:"priceCriteria"`
	TotalFound       int                `json:"totalFound"`
	Products         []ExtractedProduct `json:"products"`
	Timestamp        time.Time          `json:"timestamp"`
	SearchTimeMarker string             `json:"searchTimeMarker"`
}

// ErrorResponse is the payload returned when every search source failed and no
// validation could be performed at all.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Query     string    `json:"query"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
