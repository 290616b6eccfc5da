package store

import (
	"errors"
	"testing"

	"github.com/dmayman/mealio/internal/model"
)

type shoppingListFixture struct {
	lists       *ShoppingListStore
	plans       *MealPlanStore
	recipes     *RecipeStore
	users       *UserStore
	households  *HouseholdStore
	ingredients *IngredientStore
}

func setupShoppingListTestDB(t *testing.T) shoppingListFixture {
	t.Helper()
	db := openTestDB(t)
	return shoppingListFixture{
		lists:       NewShoppingListStore(db),
		plans:       NewMealPlanStore(db),
		recipes:     NewRecipeStore(db),
		users:       NewUserStore(db),
		households:  NewHouseholdStore(db),
		ingredients: NewIngredientStore(db),
	}
}

func TestShoppingListCreateAndAddItem(t *testing.T) {
	f := setupShoppingListTestDB(t)

	u, _ := f.users.Create("alice@example.com", "Alice")
	h, _ := f.households.Create(u.ID, "Test Household")
	milk, _ := f.ingredients.Resolve("milk")

	l, err := f.lists.Create(u.ID, h.ID, "Weekend Run")
	if err != nil {
		t.Fatalf("create shopping list: %v", err)
	}
	if l.Status != model.ListActive {
		t.Errorf("status = %q, want %q", l.Status, model.ListActive)
	}

	item, err := f.lists.AddItem(l.ID, milk.ID, floatPtr(2), "liter", "whole")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.IngredientID != milk.ID {
		t.Errorf("ingredient_id = %d, want %d", item.IngredientID, milk.ID)
	}
	if item.Checked {
		t.Error("expected new item unchecked")
	}
}

func TestShoppingListAddItemUnknownIngredient(t *testing.T) {
	f := setupShoppingListTestDB(t)

	u, _ := f.users.Create("alice@example.com", "Alice")
	h, _ := f.households.Create(u.ID, "Test Household")
	l, _ := f.lists.Create(u.ID, h.ID, "Run")

	_, err := f.lists.AddItem(l.ID, 999, nil, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestShoppingListCheckOff(t *testing.T) {
	f := setupShoppingListTestDB(t)

	u, _ := f.users.Create("alice@example.com", "Alice")
	h, _ := f.households.Create(u.ID, "Test Household")
	milk, _ := f.ingredients.Resolve("milk")
	l, _ := f.lists.Create(u.ID, h.ID, "Run")
	item, _ := f.lists.AddItem(l.ID, milk.ID, nil, "", "")

	if _, err := f.lists.SetItemChecked(item.ID, true); err != nil {
		t.Fatalf("set checked: %v", err)
	}

	fresh, _ := f.lists.GetByID(l.ID)
	if !fresh.Items[0].Checked {
		t.Error("expected item checked")
	}
}

func newPlanWithRecipes(t *testing.T, f shoppingListFixture) (int64, int64, int64) {
	t.Helper()
	u, _ := f.users.Create("alice@example.com", "Alice")
	h, _ := f.households.Create(u.ID, "Test Household")
	p, err := f.plans.Create(u.ID, h.ID, "2025-06-02", "Week Plan")
	if err != nil {
		t.Fatalf("create meal plan: %v", err)
	}
	return u.ID, h.ID, p.ID
}

func TestGenerateFromMealPlanAggregates(t *testing.T) {
	f := setupShoppingListTestDB(t)
	userID, _, planID := newPlanWithRecipes(t, f)

	flour, _ := f.ingredients.Resolve("flour")
	eggs, _ := f.ingredients.Resolve("eggs")

	bread, _ := f.recipes.Create(userID, RecipeParams{Title: "Bread"}, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(2), Unit: "cup", RawText: "2 cups flour"},
	})
	cake, _ := f.recipes.Create(userID, RecipeParams{Title: "Cake"}, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(3), Unit: "cup", RawText: "3 cups flour"},
		{IngredientID: &eggs.ID, Quantity: floatPtr(2), Unit: "", RawText: "2 eggs"},
	})
	f.plans.AddPlannedMeal(planID, bread.ID, "2025-06-03", model.MealBreakfast, "")
	f.plans.AddPlannedMeal(planID, cake.ID, "2025-06-04", model.MealDinner, "")

	l, err := f.lists.GenerateFromMealPlan(planID, userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if l.Name != "Shopping List for Week Plan" {
		t.Errorf("name = %q, want %q", l.Name, "Shopping List for Week Plan")
	}
	if l.MealPlanID == nil || *l.MealPlanID != planID {
		t.Errorf("meal_plan_id = %v, want %d", l.MealPlanID, planID)
	}
	if len(l.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(l.Items))
	}

	// Flour appears first and sums across both recipes.
	if l.Items[0].IngredientID != flour.ID {
		t.Errorf("first item ingredient = %d, want flour %d", l.Items[0].IngredientID, flour.ID)
	}
	if l.Items[0].Quantity == nil || *l.Items[0].Quantity != 5 {
		t.Errorf("flour quantity = %v, want 5", l.Items[0].Quantity)
	}
	if l.Items[0].Unit != "cup" {
		t.Errorf("flour unit = %q, want %q", l.Items[0].Unit, "cup")
	}
}

func TestGenerateFromMealPlanMissingQuantity(t *testing.T) {
	f := setupShoppingListTestDB(t)
	userID, _, planID := newPlanWithRecipes(t, f)

	salt, _ := f.ingredients.Resolve("salt")

	soup, _ := f.recipes.Create(userID, RecipeParams{Title: "Soup"}, []IngredientLineParams{
		{IngredientID: &salt.ID, RawText: "salt to taste"},
		{IngredientID: &salt.ID, Quantity: floatPtr(1), Unit: "teaspoon", RawText: "1 tsp salt"},
	})
	f.plans.AddPlannedMeal(planID, soup.ID, "2025-06-03", model.MealDinner, "")

	l, err := f.lists.GenerateFromMealPlan(planID, userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(l.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(l.Items))
	}
	// The quantityless line counts as zero; the first line's unit sticks.
	if l.Items[0].Quantity == nil || *l.Items[0].Quantity != 1 {
		t.Errorf("quantity = %v, want 1", l.Items[0].Quantity)
	}
	if l.Items[0].Unit != "" {
		t.Errorf("unit = %q, want first-seen empty unit", l.Items[0].Unit)
	}
}

func TestGenerateFromMealPlanSkipsUnresolvedLines(t *testing.T) {
	f := setupShoppingListTestDB(t)
	userID, _, planID := newPlanWithRecipes(t, f)

	basil, _ := f.ingredients.Resolve("basil")

	r, _ := f.recipes.Create(userID, RecipeParams{Title: "Pesto"}, []IngredientLineParams{
		{IngredientID: &basil.ID, Quantity: floatPtr(1), Unit: "cup", RawText: "1 cup basil"},
		{RawText: "a glug of olive oil"},
	})
	f.plans.AddPlannedMeal(planID, r.ID, "2025-06-03", model.MealLunch, "")

	l, err := f.lists.GenerateFromMealPlan(planID, userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(l.Items) != 1 {
		t.Fatalf("items = %d, want 1 (unresolved line skipped)", len(l.Items))
	}
}

func TestGenerateFromMealPlanNotFound(t *testing.T) {
	f := setupShoppingListTestDB(t)

	u, _ := f.users.Create("alice@example.com", "Alice")
	_, err := f.lists.GenerateFromMealPlan(999, u.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGenerateFromMealPlanSnapshot(t *testing.T) {
	f := setupShoppingListTestDB(t)
	userID, _, planID := newPlanWithRecipes(t, f)

	flour, _ := f.ingredients.Resolve("flour")
	r, _ := f.recipes.Create(userID, RecipeParams{Title: "Bread"}, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(2), Unit: "cup", RawText: "2 cups flour"},
	})
	f.plans.AddPlannedMeal(planID, r.ID, "2025-06-03", model.MealDinner, "")

	l, _ := f.lists.GenerateFromMealPlan(planID, userID)

	// Changing the recipe afterwards must not touch the generated list.
	if err := f.recipes.ReplaceIngredientLines(r.ID, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(9), Unit: "cup", RawText: "9 cups flour"},
	}); err != nil {
		t.Fatalf("replace lines: %v", err)
	}

	fresh, _ := f.lists.GetByID(l.ID)
	if fresh.Items[0].Quantity == nil || *fresh.Items[0].Quantity != 2 {
		t.Errorf("quantity = %v, want the snapshot value 2", fresh.Items[0].Quantity)
	}
}

func TestShoppingListSetStatus(t *testing.T) {
	f := setupShoppingListTestDB(t)

	u, _ := f.users.Create("alice@example.com", "Alice")
	h, _ := f.households.Create(u.ID, "Test Household")
	l, _ := f.lists.Create(u.ID, h.ID, "Run")

	if _, err := f.lists.SetStatus(l.ID, model.ListCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}

	fresh, _ := f.lists.GetByID(l.ID)
	if fresh.Status != model.ListCompleted {
		t.Errorf("status = %q, want %q", fresh.Status, model.ListCompleted)
	}
}
