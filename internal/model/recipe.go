package model

import "time"

const (
	SourceManual    = "manual"
	SourceScraped   = "scraped"
	SourceGenerated = "generated"
)

type Recipe struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Instructions        []string  `json:"instructions"`
	PrepTime            *int      `json:"prep_time"`
	CookTime            *int      `json:"cook_time"`
	TotalTime           *int      `json:"total_time"`
	Servings            *int      `json:"servings"`
	SourceURL           string    `json:"source_url"`
	ImageURL            string    `json:"image_url"`
	DifficultyLevel     string    `json:"difficulty_level"`
	SourceType          string    `json:"source_type"`
	Author              string    `json:"author"`
	Cuisine             string    `json:"cuisine"`
	Category            string    `json:"category"`
	Keywords            []string  `json:"keywords"`
	SiteName            string    `json:"site_name"`
	Language            string    `json:"language"`
	SharedWithHousehold bool      `json:"shared_with_household"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
}

// RecipeIngredient is one ordered ingredient line of a recipe. IngredientID
// is nil when normalization could not extract a name to resolve.
type RecipeIngredient struct {
	ID                int64    `json:"id"`
	RecipeID          int64    `json:"recipe_id"`
	IngredientID      *int64   `json:"ingredient_id"`
	Quantity          *float64 `json:"quantity"`
	Unit              string   `json:"unit"`
	Notes             string   `json:"notes"`
	OrderIndex        int      `json:"order_index"`
	RawText           string   `json:"raw_text"`
	ParsingConfidence *float64 `json:"parsing_confidence"`
}

// RecipeAccess records that a household may view a recipe owned by someone
// outside it. Unique per (recipe, household).
type RecipeAccess struct {
	ID          int64     `json:"id"`
	RecipeID    int64     `json:"recipe_id"`
	HouseholdID int64     `json:"household_id"`
	GrantedBy   int64     `json:"granted_by"`
	GrantedAt   time.Time `json:"granted_at"`
}

type RecipeNutrition struct {
	ID                   int64    `json:"id"`
	RecipeID             int64    `json:"recipe_id"`
	Calories             *float64 `json:"calories"`
	ProteinGrams         *float64 `json:"protein_grams"`
	CarbsGrams           *float64 `json:"carbs_grams"`
	FatGrams             *float64 `json:"fat_grams"`
	FiberGrams           *float64 `json:"fiber_grams"`
	SugarGrams           *float64 `json:"sugar_grams"`
	SodiumMg             *float64 `json:"sodium_mg"`
	SaturatedFatGrams    *float64 `json:"saturated_fat_grams"`
	UnsaturatedFatGrams  *float64 `json:"unsaturated_fat_grams"`
	TransFatGrams        *float64 `json:"trans_fat_grams"`
}

const (
	AccessOwner           = "owner"
	AccessHouseholdShared = "household_shared"
)

// AccessibleRecipe pairs a recipe with how the requesting user may use it.
type AccessibleRecipe struct {
	Recipe     Recipe `json:"recipe"`
	CanEdit    bool   `json:"can_edit"`
	AccessType string `json:"access_type"`
}

type RecipeUsage struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	RecipeID          int64     `json:"recipe_id"`
	UsedAt            time.Time `json:"used_at"`
	Rating            *int      `json:"rating"`
	Notes             string    `json:"notes"`
	CookingTimeActual *int      `json:"cooking_time_actual"`
}

type RecipeUsageStats struct {
	UsageCount         int      `json:"usage_count"`
	AverageRating      *float64 `json:"average_rating"`
	AverageCookingTime *float64 `json:"average_cooking_time"`
}
