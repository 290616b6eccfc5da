package store

import (
	"database/sql"
	"fmt"

	"github.com/dmayman/mealio/internal/model"
)

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

func scanMealPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var p model.MealPlan
	err := scanner.Scan(&p.ID, &p.UserID, &p.HouseholdID, &p.WeekStart, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlannedMeal(scanner interface{ Scan(...any) error }) (*model.PlannedMeal, error) {
	var m model.PlannedMeal
	var completed int
	err := scanner.Scan(&m.ID, &m.MealPlanID, &m.RecipeID, &m.PlannedDate, &m.MealType, &completed, &m.Notes, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Completed = completed != 0
	return &m, nil
}

const mealPlanCols = `id, user_id, household_id, week_start, name, created_at, updated_at`
const plannedMealCols = `id, meal_plan_id, recipe_id, planned_date, meal_type, completed, notes, created_at`

// Create starts a meal plan for the user's household. WeekStart is an ISO
// date (YYYY-MM-DD).
func (s *MealPlanStore) Create(userID, householdID int64, weekStart, name string) (*model.MealPlan, error) {
	if name == "" {
		name = "Week of " + weekStart
	}
	result, err := s.db.Exec(
		`INSERT INTO meal_plans (user_id, household_id, week_start, name) VALUES (?, ?, ?, ?)`,
		userID, householdID, weekStart, name,
	)
	if err != nil {
		return nil, fmt.Errorf("create meal plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the plan with its planned meals in date order, or nil.
func (s *MealPlanStore) GetByID(id int64) (*model.MealPlan, error) {
	row := s.db.QueryRow(`SELECT `+mealPlanCols+` FROM meal_plans WHERE id = ?`, id)
	p, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+plannedMealCols+` FROM planned_meals WHERE meal_plan_id = ? ORDER BY planned_date ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanPlannedMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planned meal: %w", err)
		}
		p.PlannedMeals = append(p.PlannedMeals, *m)
	}
	return p, rows.Err()
}

// ListForHousehold returns the household's plans, most recent week first.
func (s *MealPlanStore) ListForHousehold(householdID int64, limit, offset int) ([]model.MealPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+mealPlanCols+` FROM meal_plans WHERE household_id = ? ORDER BY week_start DESC, id DESC LIMIT ? OFFSET ?`,
		householdID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		p, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *MealPlanStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete meal plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// AddPlannedMeal schedules a recipe on the plan for a date and meal slot.
func (s *MealPlanStore) AddPlannedMeal(planID, recipeID int64, plannedDate, mealType, notes string) (*model.PlannedMeal, error) {
	result, err := s.db.Exec(
		`INSERT INTO planned_meals (meal_plan_id, recipe_id, planned_date, meal_type, notes) VALUES (?, ?, ?, ?, ?)`,
		planID, recipeID, plannedDate, mealType, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("add planned meal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+plannedMealCols+` FROM planned_meals WHERE id = ?`, id)
	return scanPlannedMeal(row)
}

// SetMealCompleted marks a planned meal cooked or not.
func (s *MealPlanStore) SetMealCompleted(mealID int64, completed bool) (bool, error) {
	result, err := s.db.Exec(`UPDATE planned_meals SET completed = ? WHERE id = ?`, completed, mealID)
	if err != nil {
		return false, fmt.Errorf("set meal completed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *MealPlanStore) RemovePlannedMeal(mealID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM planned_meals WHERE id = ?`, mealID)
	if err != nil {
		return false, fmt.Errorf("remove planned meal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
