package store

import (
	"database/sql"
	"fmt"

	"github.com/dmayman/mealio/internal/model"
)

type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

func scanUsage(scanner interface{ Scan(...any) error }) (*model.RecipeUsage, error) {
	var u model.RecipeUsage
	var rating, cookingTime sql.NullInt64
	err := scanner.Scan(&u.ID, &u.UserID, &u.RecipeID, &u.UsedAt, &rating, &u.Notes, &cookingTime)
	if err != nil {
		return nil, err
	}
	u.Rating = nullableInt(rating)
	u.CookingTimeActual = nullableInt(cookingTime)
	return &u, nil
}

const usageCols = `id, user_id, recipe_id, used_at, rating, notes, cooking_time_actual`

// Record logs that the user cooked a recipe, with an optional rating and
// actual cooking time in minutes.
func (s *UsageStore) Record(userID, recipeID int64, rating *int, notes string, cookingTimeActual *int) (*model.RecipeUsage, error) {
	result, err := s.db.Exec(
		`INSERT INTO recipe_usage (user_id, recipe_id, rating, notes, cooking_time_actual) VALUES (?, ?, ?, ?, ?)`,
		userID, recipeID, rating, notes, cookingTimeActual,
	)
	if err != nil {
		return nil, fmt.Errorf("record recipe usage: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+usageCols+` FROM recipe_usage WHERE id = ?`, id)
	return scanUsage(row)
}

// StatsForRecipe summarizes how often and how well a recipe has cooked.
// Averages are nil when no usage row carries the field.
func (s *UsageStore) StatsForRecipe(recipeID int64) (*model.RecipeUsageStats, error) {
	var stats model.RecipeUsageStats
	var avgRating, avgTime sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), AVG(rating), AVG(cooking_time_actual) FROM recipe_usage WHERE recipe_id = ?`,
		recipeID,
	).Scan(&stats.UsageCount, &avgRating, &avgTime)
	if err != nil {
		return nil, fmt.Errorf("recipe usage stats: %w", err)
	}
	if avgRating.Valid {
		stats.AverageRating = &avgRating.Float64
	}
	if avgTime.Valid {
		stats.AverageCookingTime = &avgTime.Float64
	}
	return &stats, nil
}

// RecentForUser returns the user's usage history, newest first.
func (s *UsageStore) RecentForUser(userID int64, limit int) ([]model.RecipeUsage, error) {
	rows, err := s.db.Query(
		`SELECT `+usageCols+` FROM recipe_usage WHERE user_id = ? ORDER BY used_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipe usage: %w", err)
	}
	defer rows.Close()

	var usages []model.RecipeUsage
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe usage: %w", err)
		}
		usages = append(usages, *u)
	}
	return usages, rows.Err()
}
