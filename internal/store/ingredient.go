package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmayman/mealio/internal/ingredient"
	"github.com/dmayman/mealio/internal/model"
)

type IngredientStore struct {
	db *sql.DB
}

func NewIngredientStore(db *sql.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

func scanIngredient(scanner interface{ Scan(...any) error }) (*model.Ingredient, error) {
	var i model.Ingredient
	var category sql.NullString
	err := scanner.Scan(&i.ID, &i.Name, &category, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		i.Category = &category.String
	}
	return &i, nil
}

const ingredientCols = `id, name, category, created_at`

// Resolve returns the catalog entry for the given name, creating it when
// absent. Names are matched exactly after trimming and lower-casing; this is
// the only deduplication the catalog performs. New entries are assigned a
// store category at insert time. A concurrent creator that
// loses the unique-constraint race re-reads the winner's row instead of
// failing.
func (s *IngredientStore) Resolve(name string) (*model.Ingredient, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, fmt.Errorf("resolve ingredient: empty name")
	}

	var resolved *model.Ingredient
	backoff := retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		existing, err := s.GetByName(normalized)
		if err != nil {
			return err
		}
		if existing != nil {
			resolved = existing
			return nil
		}

		result, err := s.db.Exec(
			`INSERT INTO ingredients (name, category) VALUES (?, ?)`,
			normalized, ingredient.Categorize(normalized),
		)
		if isUniqueViolation(err) {
			// Someone else created it between our read and insert.
			return retry.RetryableError(err)
		}
		if err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		resolved, err = s.GetByID(id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve ingredient %q: %w", normalized, err)
	}
	return resolved, nil
}

func (s *IngredientStore) GetByID(id int64) (*model.Ingredient, error) {
	row := s.db.QueryRow(`SELECT `+ingredientCols+` FROM ingredients WHERE id = ?`, id)
	i, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return i, nil
}

func (s *IngredientStore) GetByName(name string) (*model.Ingredient, error) {
	row := s.db.QueryRow(`SELECT `+ingredientCols+` FROM ingredients WHERE name = ?`, name)
	i, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient by name: %w", err)
	}
	return i, nil
}

func (s *IngredientStore) Search(query string, limit int) ([]model.Ingredient, error) {
	rows, err := s.db.Query(
		`SELECT `+ingredientCols+` FROM ingredients WHERE name LIKE ? ORDER BY name ASC LIMIT ?`,
		"%"+strings.ToLower(strings.TrimSpace(query))+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, *i)
	}
	return ingredients, rows.Err()
}
