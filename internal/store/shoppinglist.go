package store

import (
	"database/sql"
	"fmt"

	"github.com/dmayman/mealio/internal/model"
)

type ShoppingListStore struct {
	db *sql.DB
}

func NewShoppingListStore(db *sql.DB) *ShoppingListStore {
	return &ShoppingListStore{db: db}
}

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var planID sql.NullInt64
	err := scanner.Scan(&l.ID, &planID, &l.UserID, &l.HouseholdID, &l.Name, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if planID.Valid {
		l.MealPlanID = &planID.Int64
	}
	return &l, nil
}

func scanShoppingListItem(scanner interface{ Scan(...any) error }) (*model.ShoppingListItem, error) {
	var it model.ShoppingListItem
	var quantity sql.NullFloat64
	var category sql.NullString
	var checked int
	err := scanner.Scan(&it.ID, &it.ShoppingListID, &it.IngredientID, &quantity, &it.Unit,
		&checked, &category, &it.Notes, &it.OrderIndex)
	if err != nil {
		return nil, err
	}
	if quantity.Valid {
		it.Quantity = &quantity.Float64
	}
	if category.Valid {
		it.Category = &category.String
	}
	it.Checked = checked != 0
	return &it, nil
}

const shoppingListCols = `id, meal_plan_id, user_id, household_id, name, status, created_at, updated_at`
const shoppingListItemCols = `id, shopping_list_id, ingredient_id, quantity, unit, checked, category, notes, order_index`

func (s *ShoppingListStore) Create(userID, householdID int64, name string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (user_id, household_id, name, status) VALUES (?, ?, ?, ?)`,
		userID, householdID, name, model.ListActive,
	)
	if err != nil {
		return nil, fmt.Errorf("create shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the list with its items in order, or nil.
func (s *ShoppingListStore) GetByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+shoppingListItemCols+` FROM shopping_list_items WHERE shopping_list_id = ? ORDER BY order_index ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanShoppingListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list item: %w", err)
		}
		l.Items = append(l.Items, *it)
	}
	return l, rows.Err()
}

func (s *ShoppingListStore) ListForHousehold(householdID int64, limit, offset int) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		householdID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ShoppingListStore) SetStatus(id int64, status string) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE shopping_lists SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("set shopping list status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ShoppingListStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete shopping list: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// AddItem appends an item to the end of the list.
func (s *ShoppingListStore) AddItem(listID, ingredientID int64, quantity *float64, unit, notes string) (*model.ShoppingListItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_list_items (shopping_list_id, ingredient_id, quantity, unit, category, notes, order_index)
		 SELECT ?, i.id, ?, ?, i.category, ?,
			(SELECT COALESCE(MAX(order_index) + 1, 0) FROM shopping_list_items WHERE shopping_list_id = ?)
		 FROM ingredients i WHERE i.id = ?`,
		listID, quantity, unit, notes, listID, ingredientID,
	)
	if err != nil {
		return nil, fmt.Errorf("add shopping list item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+shoppingListItemCols+` FROM shopping_list_items WHERE id = ?`, id)
	return scanShoppingListItem(row)
}

func (s *ShoppingListStore) SetItemChecked(itemID int64, checked bool) (bool, error) {
	result, err := s.db.Exec(`UPDATE shopping_list_items SET checked = ? WHERE id = ?`, checked, itemID)
	if err != nil {
		return false, fmt.Errorf("set item checked: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ShoppingListStore) RemoveItem(itemID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, itemID)
	if err != nil {
		return false, fmt.Errorf("remove shopping list item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// aggregatedItem accumulates quantities for one catalog entry while
// generating a list from a meal plan.
type aggregatedItem struct {
	ingredientID int64
	quantity     float64
	unit         string
	category     sql.NullString
}

// GenerateFromMealPlan builds a shopping list from every ingredient line of
// every recipe planned on the given meal plan. Lines with the same catalog
// entry collapse into one item: quantities are summed, a missing quantity
// counts as zero, and the first line's unit is kept. Lines that never
// resolved to a catalog entry are skipped. Returns ErrNotFound when the plan
// does not exist.
func (s *ShoppingListStore) GenerateFromMealPlan(planID, userID int64) (*model.ShoppingList, error) {
	var householdID int64
	var planName string
	err := s.db.QueryRow(`SELECT household_id, name FROM meal_plans WHERE id = ?`, planID).
		Scan(&householdID, &planName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT ri.ingredient_id, ri.quantity, ri.unit, i.category
		 FROM planned_meals pm
		 JOIN recipe_ingredients ri ON ri.recipe_id = pm.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE pm.meal_plan_id = ?
		 ORDER BY pm.id ASC, ri.order_index ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("collect plan ingredients: %w", err)
	}
	defer rows.Close()

	var order []int64
	byIngredient := map[int64]*aggregatedItem{}
	for rows.Next() {
		var ingredientID int64
		var quantity sql.NullFloat64
		var unit string
		var category sql.NullString
		if err := rows.Scan(&ingredientID, &quantity, &unit, &category); err != nil {
			return nil, fmt.Errorf("scan plan ingredient: %w", err)
		}
		item, ok := byIngredient[ingredientID]
		if !ok {
			item = &aggregatedItem{ingredientID: ingredientID, unit: unit, category: category}
			byIngredient[ingredientID] = item
			order = append(order, ingredientID)
		}
		if quantity.Valid {
			item.quantity += quantity.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect plan ingredients: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO shopping_lists (meal_plan_id, user_id, household_id, name, status) VALUES (?, ?, ?, ?, ?)`,
		planID, userID, householdID, "Shopping List for "+planName, model.ListActive,
	)
	if err != nil {
		return nil, fmt.Errorf("create shopping list: %w", err)
	}
	listID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, ingredientID := range order {
		item := byIngredient[ingredientID]
		if _, err := tx.Exec(
			`INSERT INTO shopping_list_items (shopping_list_id, ingredient_id, quantity, unit, category, order_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			listID, item.ingredientID, item.quantity, item.unit, item.category, i,
		); err != nil {
			return nil, fmt.Errorf("insert aggregated item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("generate shopping list: %w", err)
	}
	return s.GetByID(listID)
}
