package model

import "time"

const (
	ListActive    = "active"
	ListCompleted = "completed"
	ListArchived  = "archived"
)

type ShoppingList struct {
	ID          int64     `json:"id"`
	MealPlanID  *int64    `json:"meal_plan_id"`
	UserID      int64     `json:"user_id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []ShoppingListItem `json:"items,omitempty"`
}

type ShoppingListItem struct {
	ID             int64    `json:"id"`
	ShoppingListID int64    `json:"shopping_list_id"`
	IngredientID   int64    `json:"ingredient_id"`
	Quantity       *float64 `json:"quantity"`
	Unit           string   `json:"unit"`
	Checked        bool     `json:"checked"`
	Category       *string  `json:"category"`
	Notes          string   `json:"notes"`
	OrderIndex     int      `json:"order_index"`
}
