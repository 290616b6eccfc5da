package model

import "time"

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

type MealPlan struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	HouseholdID int64     `json:"household_id"`
	WeekStart   string    `json:"week_start"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	PlannedMeals []PlannedMeal `json:"planned_meals,omitempty"`
}

type PlannedMeal struct {
	ID          int64     `json:"id"`
	MealPlanID  int64     `json:"meal_plan_id"`
	RecipeID    int64     `json:"recipe_id"`
	PlannedDate string    `json:"planned_date"`
	MealType    string    `json:"meal_type"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
