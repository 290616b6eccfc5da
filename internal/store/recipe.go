package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmayman/mealio/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// RecipeParams holds the writable recipe fields shared by create and update.
type RecipeParams struct {
	Title               string
	Description         string
	Instructions        []string
	PrepTime            *int
	CookTime            *int
	TotalTime           *int
	Servings            *int
	SourceURL           string
	ImageURL            string
	DifficultyLevel     string
	SourceType          string
	Author              string
	Cuisine             string
	Category            string
	Keywords            []string
	SiteName            string
	Language            string
	SharedWithHousehold bool
}

// IngredientLineParams is one ordered ingredient line of a recipe at write
// time. IngredientID is nil when the line could not be resolved to a catalog
// entry.
type IngredientLineParams struct {
	IngredientID      *int64
	Quantity          *float64
	Unit              string
	Notes             string
	RawText           string
	ParsingConfidence *float64
}

func marshalStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func unmarshalStrings(data string) []string {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return []string{}
	}
	return values
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var instructions, keywords string
	var prepTime, cookTime, totalTime, servings sql.NullInt64
	var shared int
	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &instructions,
		&prepTime, &cookTime, &totalTime, &servings,
		&r.SourceURL, &r.ImageURL, &r.DifficultyLevel, &r.SourceType,
		&r.Author, &r.Cuisine, &r.Category, &keywords, &r.SiteName, &r.Language,
		&shared, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Instructions = unmarshalStrings(instructions)
	r.Keywords = unmarshalStrings(keywords)
	r.PrepTime = nullableInt(prepTime)
	r.CookTime = nullableInt(cookTime)
	r.TotalTime = nullableInt(totalTime)
	r.Servings = nullableInt(servings)
	r.SharedWithHousehold = shared != 0
	return &r, nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func scanRecipeIngredient(scanner interface{ Scan(...any) error }) (*model.RecipeIngredient, error) {
	var ri model.RecipeIngredient
	var ingredientID sql.NullInt64
	var quantity, confidence sql.NullFloat64
	err := scanner.Scan(
		&ri.ID, &ri.RecipeID, &ingredientID, &quantity, &ri.Unit,
		&ri.Notes, &ri.OrderIndex, &ri.RawText, &confidence,
	)
	if err != nil {
		return nil, err
	}
	if ingredientID.Valid {
		ri.IngredientID = &ingredientID.Int64
	}
	if quantity.Valid {
		ri.Quantity = &quantity.Float64
	}
	if confidence.Valid {
		ri.ParsingConfidence = &confidence.Float64
	}
	return &ri, nil
}

const recipeCols = `id, user_id, title, description, instructions,
	prep_time, cook_time, total_time, servings,
	source_url, image_url, difficulty_level, source_type,
	author, cuisine, category, keywords, site_name, language,
	shared_with_household, created_at, updated_at`

const recipeIngredientCols = `id, recipe_id, ingredient_id, quantity, unit,
	notes, order_index, raw_text, parsing_confidence`

// Create inserts a recipe and its ordered ingredient lines in one
// transaction, so a recipe is never visible with a partial ingredient list.
func (s *RecipeStore) Create(userID int64, p RecipeParams, lines []IngredientLineParams) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertRecipe(tx, userID, p)
	if err != nil {
		return nil, err
	}
	if err := insertIngredientLines(tx, id, lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return s.GetByID(id)
}

func insertRecipe(tx *sql.Tx, userID int64, p RecipeParams) (int64, error) {
	if p.SourceType == "" {
		p.SourceType = model.SourceManual
	}
	result, err := tx.Exec(
		`INSERT INTO recipes (user_id, title, description, instructions,
			prep_time, cook_time, total_time, servings,
			source_url, image_url, difficulty_level, source_type,
			author, cuisine, category, keywords, site_name, language,
			shared_with_household)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.Title, p.Description, marshalStrings(p.Instructions),
		p.PrepTime, p.CookTime, p.TotalTime, p.Servings,
		p.SourceURL, p.ImageURL, p.DifficultyLevel, p.SourceType,
		p.Author, p.Cuisine, p.Category, marshalStrings(p.Keywords), p.SiteName, p.Language,
		p.SharedWithHousehold,
	)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func insertIngredientLines(tx *sql.Tx, recipeID int64, lines []IngredientLineParams) error {
	for i, line := range lines {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit,
				notes, order_index, raw_text, parsing_confidence)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			recipeID, line.IngredientID, line.Quantity, line.Unit,
			line.Notes, i, line.RawText, line.ParsingConfidence,
		); err != nil {
			return fmt.Errorf("insert ingredient line %d: %w", i, err)
		}
	}
	return nil
}

// GetByID returns the recipe with its ingredient lines in order, or nil.
func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	r.Ingredients, err = s.listIngredientLines(id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeStore) listIngredientLines(recipeID int64) ([]model.RecipeIngredient, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeIngredientCols+` FROM recipe_ingredients WHERE recipe_id = ? ORDER BY order_index ASC, id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredient lines: %w", err)
	}
	defer rows.Close()

	var lines []model.RecipeIngredient
	for rows.Next() {
		ri, err := scanRecipeIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient line: %w", err)
		}
		lines = append(lines, *ri)
	}
	return lines, rows.Err()
}

// ListForUser returns the user's own recipes, newest first.
func (s *RecipeStore) ListForUser(userID int64, limit, offset int) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes for user: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// ListAccessible returns the recipes the user may view, their own plus any
// granted to their current household, annotated with the access level.
// Sharing never confers edit rights.
func (s *RecipeStore) ListAccessible(userID int64, limit, offset int) ([]model.AccessibleRecipe, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT `+prefixCols("r", recipeCols)+`
		 FROM recipes r
		 LEFT JOIN recipe_access ra ON r.id = ra.recipe_id
		 LEFT JOIN users u ON u.id = ? AND u.current_household_id = ra.household_id
		 WHERE r.user_id = ? OR u.id IS NOT NULL
		 ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		userID, userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list accessible recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, err
	}

	accessible := make([]model.AccessibleRecipe, 0, len(recipes))
	for _, r := range recipes {
		if r.UserID == userID {
			accessible = append(accessible, model.AccessibleRecipe{Recipe: r, CanEdit: true, AccessType: model.AccessOwner})
		} else {
			accessible = append(accessible, model.AccessibleRecipe{Recipe: r, CanEdit: false, AccessType: model.AccessHouseholdShared})
		}
	}
	return accessible, nil
}

func collectRecipes(rows *sql.Rows) ([]model.Recipe, error) {
	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

// prefixCols qualifies a comma-separated column list with a table alias.
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}

// Update rewrites the recipe's fields. Ingredient lines are not touched here;
// replace them with ReplaceIngredientLines.
func (s *RecipeStore) Update(id int64, p RecipeParams) (*model.Recipe, error) {
	if p.SourceType == "" {
		p.SourceType = model.SourceManual
	}
	_, err := s.db.Exec(
		`UPDATE recipes SET title = ?, description = ?, instructions = ?,
			prep_time = ?, cook_time = ?, total_time = ?, servings = ?,
			source_url = ?, image_url = ?, difficulty_level = ?, source_type = ?,
			author = ?, cuisine = ?, category = ?, keywords = ?, site_name = ?, language = ?,
			shared_with_household = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Title, p.Description, marshalStrings(p.Instructions),
		p.PrepTime, p.CookTime, p.TotalTime, p.Servings,
		p.SourceURL, p.ImageURL, p.DifficultyLevel, p.SourceType,
		p.Author, p.Cuisine, p.Category, marshalStrings(p.Keywords), p.SiteName, p.Language,
		p.SharedWithHousehold, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(id)
}

// ReplaceIngredientLines swaps the recipe's ingredient list atomically.
func (s *RecipeStore) ReplaceIngredientLines(recipeID int64, lines []IngredientLineParams) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("delete ingredient lines: %w", err)
	}
	if err := insertIngredientLines(tx, recipeID, lines); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *RecipeStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Copy duplicates a recipe and its ingredient lines under new ownership. The
// copy is a manual recipe, shared by default, titled "<original> (Copy)".
func (s *RecipeStore) Copy(recipeID, userID int64) (*model.Recipe, error) {
	original, err := s.GetByID(recipeID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, nil
	}

	p := RecipeParams{
		Title:               original.Title + " (Copy)",
		Description:         original.Description,
		Instructions:        original.Instructions,
		PrepTime:            original.PrepTime,
		CookTime:            original.CookTime,
		TotalTime:           original.TotalTime,
		Servings:            original.Servings,
		SourceURL:           original.SourceURL,
		ImageURL:            original.ImageURL,
		DifficultyLevel:     original.DifficultyLevel,
		SourceType:          model.SourceManual,
		Author:              original.Author,
		Cuisine:             original.Cuisine,
		Category:            original.Category,
		Keywords:            original.Keywords,
		SiteName:            original.SiteName,
		Language:            original.Language,
		SharedWithHousehold: true,
	}

	lines := make([]IngredientLineParams, 0, len(original.Ingredients))
	for _, ri := range original.Ingredients {
		lines = append(lines, IngredientLineParams{
			IngredientID:      ri.IngredientID,
			Quantity:          ri.Quantity,
			Unit:              ri.Unit,
			Notes:             ri.Notes,
			RawText:           ri.RawText,
			ParsingConfidence: ri.ParsingConfidence,
		})
	}

	return s.Create(userID, p, lines)
}

// --- Access grants ---

func scanRecipeAccess(scanner interface{ Scan(...any) error }) (*model.RecipeAccess, error) {
	var a model.RecipeAccess
	err := scanner.Scan(&a.ID, &a.RecipeID, &a.HouseholdID, &a.GrantedBy, &a.GrantedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const recipeAccessCols = `id, recipe_id, household_id, granted_by, granted_at`

// GrantHouseholdAccess lets a household view a recipe. Idempotent: when a
// grant already exists for the pair the call is a no-op returning (nil, nil).
func (s *RecipeStore) GrantHouseholdAccess(recipeID, householdID, grantedBy int64) (*model.RecipeAccess, error) {
	result, err := s.db.Exec(
		`INSERT INTO recipe_access (recipe_id, household_id, granted_by) VALUES (?, ?, ?)
		 ON CONFLICT (recipe_id, household_id) DO NOTHING`,
		recipeID, householdID, grantedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("grant household access: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+recipeAccessCols+` FROM recipe_access WHERE id = ?`, id)
	return scanRecipeAccess(row)
}

func (s *RecipeStore) RevokeHouseholdAccess(recipeID, householdID int64) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM recipe_access WHERE recipe_id = ? AND household_id = ?`,
		recipeID, householdID,
	)
	if err != nil {
		return false, fmt.Errorf("revoke household access: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CanEdit reports whether the user may modify the recipe. Only the owner can;
// household sharing confers read access, never edit rights.
func (s *RecipeStore) CanEdit(recipeID, userID int64) (bool, error) {
	var owner int64
	err := s.db.QueryRow(`SELECT user_id FROM recipes WHERE id = ?`, recipeID).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("can edit: %w", err)
	}
	return owner == userID, nil
}

// CanAccess reports whether the user may view the recipe: they own it, or
// their current household holds an access grant for it.
func (s *RecipeStore) CanAccess(recipeID, userID int64) (bool, error) {
	owns, err := s.CanEdit(recipeID, userID)
	if err != nil {
		return false, err
	}
	if owns {
		return true, nil
	}

	var n int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM recipe_access ra
		 JOIN users u ON u.current_household_id = ra.household_id
		 WHERE ra.recipe_id = ? AND u.id = ?`,
		recipeID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("can access: %w", err)
	}
	return n > 0, nil
}

// --- Nutrition ---

// SetNutrition upserts the per-recipe nutrition row.
func (s *RecipeStore) SetNutrition(recipeID int64, n model.RecipeNutrition) error {
	_, err := s.db.Exec(
		`INSERT INTO recipe_nutrition (recipe_id, calories, protein_grams, carbs_grams,
			fat_grams, fiber_grams, sugar_grams, sodium_mg,
			saturated_fat_grams, unsaturated_fat_grams, trans_fat_grams)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (recipe_id) DO UPDATE SET
			calories = excluded.calories,
			protein_grams = excluded.protein_grams,
			carbs_grams = excluded.carbs_grams,
			fat_grams = excluded.fat_grams,
			fiber_grams = excluded.fiber_grams,
			sugar_grams = excluded.sugar_grams,
			sodium_mg = excluded.sodium_mg,
			saturated_fat_grams = excluded.saturated_fat_grams,
			unsaturated_fat_grams = excluded.unsaturated_fat_grams,
			trans_fat_grams = excluded.trans_fat_grams`,
		recipeID, n.Calories, n.ProteinGrams, n.CarbsGrams,
		n.FatGrams, n.FiberGrams, n.SugarGrams, n.SodiumMg,
		n.SaturatedFatGrams, n.UnsaturatedFatGrams, n.TransFatGrams,
	)
	if err != nil {
		return fmt.Errorf("set nutrition: %w", err)
	}
	return nil
}

func (s *RecipeStore) GetNutrition(recipeID int64) (*model.RecipeNutrition, error) {
	var n model.RecipeNutrition
	var vals [10]sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT id, recipe_id, calories, protein_grams, carbs_grams,
			fat_grams, fiber_grams, sugar_grams, sodium_mg,
			saturated_fat_grams, unsaturated_fat_grams, trans_fat_grams
		 FROM recipe_nutrition WHERE recipe_id = ?`,
		recipeID,
	).Scan(&n.ID, &n.RecipeID, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4],
		&vals[5], &vals[6], &vals[7], &vals[8], &vals[9])
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nutrition: %w", err)
	}
	fields := []**float64{
		&n.Calories, &n.ProteinGrams, &n.CarbsGrams, &n.FatGrams, &n.FiberGrams,
		&n.SugarGrams, &n.SodiumMg, &n.SaturatedFatGrams, &n.UnsaturatedFatGrams, &n.TransFatGrams,
	}
	for i, f := range fields {
		if vals[i].Valid {
			*f = &vals[i].Float64
		}
	}
	return &n, nil
}
