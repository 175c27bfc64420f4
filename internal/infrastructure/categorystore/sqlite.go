// Package categorystore persists the depreciation category schedule in a
// local SQLite database and exposes it through domain.CategoryStore.
package categorystore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/claimvalue/backend/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	code              TEXT NOT NULL UNIQUE,
	name              TEXT NOT NULL,
	depreciation_rate REAL NOT NULL,
	useful_life       INTEGER NOT NULL,
	examples_text     TEXT NOT NULL DEFAULT ''
);
`

// Store is a SQLite-backed category store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the category database at path, applies the
// production pragmas, ensures the schema, and seeds the standard depreciation
// schedule when the table is empty. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open category db: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListCategories reads all category rows, ordered by code for stable output.
func (s *Store) ListCategories(ctx context.Context) ([]domain.CategoryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, depreciation_rate, useful_life, examples_text
		 FROM categories ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCategoryStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.CategoryRow
	for rows.Next() {
		var r domain.CategoryRow
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.DepreciationRate, &r.UsefulLife, &r.ExamplesText); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCategoryStoreUnavailable, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCategoryStoreUnavailable, err)
	}
	return out, nil
}

// seedIfEmpty loads the standard schedule on first open so a fresh deployment
// can categorize items without an import step.
func (s *Store) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO categories (code, name, depreciation_rate, useful_life, examples_text)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, c := range defaultSchedule {
		if _, err := stmt.Exec(c.Code, c.Name, c.DepreciationRate, c.UsefulLife, c.ExamplesText); err != nil {
			return fmt.Errorf("seed %s: %w", c.Code, err)
		}
	}
	return tx.Commit()
}

// defaultSchedule is the standard annual depreciation schedule. Rates are
// 1/useful-life rounded to 4 decimal places; examples_text drives the
// keyword-based inference strategy.
var defaultSchedule = []domain.CategoryRow{
	{Code: "APM", Name: "Appliances - Major", DepreciationRate: 0.0667, UsefulLife: 15,
		ExamplesText: "refrigerator freezer range oven stove dishwasher washer dryer washing machine water heater furnace"},
	{Code: "APS", Name: "Appliances - Small", DepreciationRate: 0.1000, UsefulLife: 10,
		ExamplesText: "microwave toaster blender mixer coffee maker food processor air fryer kettle vacuum cleaner iron"},
	{Code: "ART", Name: "Artwork", DepreciationRate: 0.0200, UsefulLife: 50,
		ExamplesText: "painting print sculpture framed art canvas poster lithograph"},
	{Code: "BED", Name: "Bedding", DepreciationRate: 0.2000, UsefulLife: 5,
		ExamplesText: "comforter sheets pillow blanket duvet mattress pad quilt bedspread"},
	{Code: "CLM", Name: "Clothing - Adult", DepreciationRate: 0.2500, UsefulLife: 4,
		ExamplesText: "shirt pants dress jacket coat suit shoes boots jeans sweater skirt blouse"},
	{Code: "CLC", Name: "Clothing - Children", DepreciationRate: 0.3333, UsefulLife: 3,
		ExamplesText: "kids clothes baby clothing onesie children shoes toddler outfit"},
	{Code: "ELC", Name: "Electronics", DepreciationRate: 0.2000, UsefulLife: 5,
		ExamplesText: "television tv laptop computer monitor tablet phone camera speaker headphones soundbar console printer router"},
	{Code: "FRN", Name: "Furniture", DepreciationRate: 0.1000, UsefulLife: 10,
		ExamplesText: "sofa couch chair table desk bed dresser bookcase cabinet nightstand ottoman recliner sectional"},
	{Code: "JWL", Name: "Jewelry", DepreciationRate: 0.0100, UsefulLife: 100,
		ExamplesText: "ring necklace bracelet watch earrings pendant gold silver diamond"},
	{Code: "KIT", Name: "Kitchenware", DepreciationRate: 0.1429, UsefulLife: 7,
		ExamplesText: "pots pans cookware dishes plates glasses utensils cutlery knives bakeware dinnerware"},
	{Code: "LIN", Name: "Linens", DepreciationRate: 0.2000, UsefulLife: 5,
		ExamplesText: "towels washcloth tablecloth napkins curtains drapes"},
	{Code: "OUT", Name: "Outdoor Equipment", DepreciationRate: 0.1000, UsefulLife: 10,
		ExamplesText: "grill lawn mower patio furniture trimmer leaf blower garden hose snow blower"},
	{Code: "SPG", Name: "Sporting Goods", DepreciationRate: 0.1429, UsefulLife: 7,
		ExamplesText: "bicycle treadmill weights golf clubs tennis racket skis kayak exercise bike fishing rod"},
	{Code: "TOY", Name: "Toys & Games", DepreciationRate: 0.2000, UsefulLife: 5,
		ExamplesText: "toys lego doll board game puzzle action figure stuffed animal"},
	{Code: "TLS", Name: "Tools", DepreciationRate: 0.0667, UsefulLife: 15,
		ExamplesText: "drill saw hammer wrench screwdriver toolbox sander ladder power tools"},
}
