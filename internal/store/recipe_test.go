package store

import (
	"testing"

	"github.com/dmayman/mealio/internal/model"
)

func setupRecipeTestDB(t *testing.T) (*RecipeStore, *UserStore, *HouseholdStore, *IngredientStore) {
	t.Helper()
	db := openTestDB(t)
	return NewRecipeStore(db), NewUserStore(db), NewHouseholdStore(db), NewIngredientStore(db)
}

func floatPtr(v float64) *float64 { return &v }

func TestRecipeCreateWithIngredients(t *testing.T) {
	rs, us, _, is := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	flour, _ := is.Resolve("flour")
	sugar, _ := is.Resolve("sugar")

	r, err := rs.Create(u.ID, RecipeParams{
		Title:        "Pancakes",
		Instructions: []string{"Mix", "Fry"},
	}, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(2), Unit: "cup", RawText: "2 cups flour"},
		{IngredientID: &sugar.ID, Quantity: floatPtr(1), Unit: "tablespoon", RawText: "1 tbsp sugar"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if r.SourceType != model.SourceManual {
		t.Errorf("source_type = %q, want %q", r.SourceType, model.SourceManual)
	}
	if len(r.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2", len(r.Instructions))
	}
	if len(r.Ingredients) != 2 {
		t.Fatalf("ingredient lines = %d, want 2", len(r.Ingredients))
	}
	if r.Ingredients[0].RawText != "2 cups flour" || r.Ingredients[0].OrderIndex != 0 {
		t.Errorf("first line = %+v, want 2 cups flour at index 0", r.Ingredients[0])
	}
	if r.Ingredients[1].OrderIndex != 1 {
		t.Errorf("second line order_index = %d, want 1", r.Ingredients[1].OrderIndex)
	}
}

func TestRecipeCreateUnresolvedLine(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	r, err := rs.Create(u.ID, RecipeParams{Title: "Mystery"}, []IngredientLineParams{
		{RawText: "a pinch of something"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if r.Ingredients[0].IngredientID != nil {
		t.Error("expected unresolved line to keep nil ingredient id")
	}
}

func TestRecipeGetByIDNotFound(t *testing.T) {
	rs, _, _, _ := setupRecipeTestDB(t)

	r, err := rs.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if r != nil {
		t.Error("expected nil for nonexistent recipe")
	}
}

func TestRecipeUpdate(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, _ := rs.Create(u.ID, RecipeParams{Title: "Old Title"}, nil)

	updated, err := rs.Update(created.ID, RecipeParams{Title: "New Title", SharedWithHousehold: true})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated.Title != "New Title" {
		t.Errorf("title = %q, want %q", updated.Title, "New Title")
	}
	if !updated.SharedWithHousehold {
		t.Error("expected sharing enabled after update")
	}
	if updated.SourceType != model.SourceManual {
		t.Errorf("source type = %q, want %q", updated.SourceType, model.SourceManual)
	}
}

func TestRecipeUpdateDefaultsSourceType(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, _ := rs.Create(u.ID, RecipeParams{Title: "Imported", SourceType: model.SourceScraped}, nil)

	// An update with no source type must not trip the source_type check.
	updated, err := rs.Update(created.ID, RecipeParams{Title: "Imported v2"})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated.SourceType != model.SourceManual {
		t.Errorf("source type = %q, want %q", updated.SourceType, model.SourceManual)
	}
}

func TestRecipeReplaceIngredientLines(t *testing.T) {
	rs, us, _, is := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	flour, _ := is.Resolve("flour")
	eggs, _ := is.Resolve("eggs")

	created, _ := rs.Create(u.ID, RecipeParams{Title: "Dough"}, []IngredientLineParams{
		{IngredientID: &flour.ID, RawText: "flour"},
	})

	err := rs.ReplaceIngredientLines(created.ID, []IngredientLineParams{
		{IngredientID: &eggs.ID, RawText: "3 eggs"},
		{IngredientID: &flour.ID, RawText: "flour"},
	})
	if err != nil {
		t.Fatalf("replace ingredient lines: %v", err)
	}

	r, _ := rs.GetByID(created.ID)
	if len(r.Ingredients) != 2 {
		t.Fatalf("ingredient lines = %d, want 2", len(r.Ingredients))
	}
	if r.Ingredients[0].RawText != "3 eggs" {
		t.Errorf("first line = %q, want %q", r.Ingredients[0].RawText, "3 eggs")
	}
}

func TestRecipeDelete(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, _ := rs.Create(u.ID, RecipeParams{Title: "Doomed"}, nil)

	deleted, err := rs.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report success")
	}

	again, err := rs.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	if again {
		t.Error("expected false for second delete")
	}
}

func TestRecipeCopy(t *testing.T) {
	rs, us, _, is := setupRecipeTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	flour, _ := is.Resolve("flour")

	original, _ := rs.Create(alice.ID, RecipeParams{
		Title:      "Bread",
		SourceType: model.SourceScraped,
	}, []IngredientLineParams{
		{IngredientID: &flour.ID, Quantity: floatPtr(3), Unit: "cup", RawText: "3 cups flour"},
	})

	copied, err := rs.Copy(original.ID, bob.ID)
	if err != nil {
		t.Fatalf("copy recipe: %v", err)
	}
	if copied.Title != "Bread (Copy)" {
		t.Errorf("title = %q, want %q", copied.Title, "Bread (Copy)")
	}
	if copied.UserID != bob.ID {
		t.Errorf("user_id = %d, want %d", copied.UserID, bob.ID)
	}
	if copied.SourceType != model.SourceManual {
		t.Errorf("source_type = %q, want %q", copied.SourceType, model.SourceManual)
	}
	if !copied.SharedWithHousehold {
		t.Error("expected copy to be shared by default")
	}
	if len(copied.Ingredients) != 1 || copied.Ingredients[0].RawText != "3 cups flour" {
		t.Errorf("copied lines = %+v, want the original line", copied.Ingredients)
	}
}

func TestRecipeCopyNotFound(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	bob, _ := us.Create("bob@example.com", "Bob")
	copied, err := rs.Copy(999, bob.ID)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if copied != nil {
		t.Error("expected nil for copying a nonexistent recipe")
	}
}

func TestRecipeGrantHouseholdAccessIdempotent(t *testing.T) {
	rs, us, hs, _ := setupRecipeTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	h, _ := hs.Create(alice.ID, "Test Household")
	r, _ := rs.Create(alice.ID, RecipeParams{Title: "Stew"}, nil)

	grant, err := rs.GrantHouseholdAccess(r.ID, h.ID, alice.ID)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if grant == nil {
		t.Fatal("expected grant on first call")
	}

	again, err := rs.GrantHouseholdAccess(r.ID, h.ID, alice.ID)
	if err != nil {
		t.Fatalf("grant again: %v", err)
	}
	if again != nil {
		t.Error("expected nil on duplicate grant")
	}
}

func TestRecipeRevokeHouseholdAccess(t *testing.T) {
	rs, us, hs, _ := setupRecipeTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	h, _ := hs.Create(alice.ID, "Test Household")
	r, _ := rs.Create(alice.ID, RecipeParams{Title: "Stew"}, nil)
	rs.GrantHouseholdAccess(r.ID, h.ID, alice.ID)

	revoked, err := rs.RevokeHouseholdAccess(r.ID, h.ID)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !revoked {
		t.Fatal("expected revoke to report success")
	}

	again, err := rs.RevokeHouseholdAccess(r.ID, h.ID)
	if err != nil {
		t.Fatalf("revoke again: %v", err)
	}
	if again {
		t.Error("expected false for second revoke")
	}
}

func TestRecipeAccessRights(t *testing.T) {
	rs, us, hs, _ := setupRecipeTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	carol, _ := us.Create("carol@example.com", "Carol")
	h, _ := hs.Create(alice.ID, "Test Household")

	r, _ := rs.Create(bob.ID, RecipeParams{Title: "Shared Stew", SharedWithHousehold: true}, nil)
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	// Owner can do everything.
	if ok, _ := rs.CanAccess(r.ID, bob.ID); !ok {
		t.Error("expected owner access")
	}
	if ok, _ := rs.CanEdit(r.ID, bob.ID); !ok {
		t.Error("expected owner edit rights")
	}

	// Household member can view but not edit.
	if ok, _ := rs.CanAccess(r.ID, alice.ID); !ok {
		t.Error("expected household member access via grant")
	}
	if ok, _ := rs.CanEdit(r.ID, alice.ID); ok {
		t.Error("expected sharing not to confer edit rights")
	}

	// Outsider sees nothing.
	if ok, _ := rs.CanAccess(r.ID, carol.ID); ok {
		t.Error("expected no access for non-members")
	}
}

func TestRecipeListAccessible(t *testing.T) {
	rs, us, hs, _ := setupRecipeTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")

	own, _ := rs.Create(alice.ID, RecipeParams{Title: "Alice's Pie"}, nil)
	shared, _ := rs.Create(bob.ID, RecipeParams{Title: "Bob's Stew", SharedWithHousehold: true}, nil)
	rs.Create(bob.ID, RecipeParams{Title: "Bob's Secret"}, nil)
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	accessible, err := rs.ListAccessible(alice.ID, 50, 0)
	if err != nil {
		t.Fatalf("list accessible: %v", err)
	}
	if len(accessible) != 2 {
		t.Fatalf("accessible = %d, want 2", len(accessible))
	}

	byID := map[int64]model.AccessibleRecipe{}
	for _, ar := range accessible {
		byID[ar.Recipe.ID] = ar
	}
	if ar := byID[own.ID]; !ar.CanEdit || ar.AccessType != model.AccessOwner {
		t.Errorf("own recipe access = %+v, want owner/editable", ar)
	}
	if ar := byID[shared.ID]; ar.CanEdit || ar.AccessType != model.AccessHouseholdShared {
		t.Errorf("shared recipe access = %+v, want household_shared/read-only", ar)
	}
}

func TestRecipeNutritionUpsert(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	r, _ := rs.Create(u.ID, RecipeParams{Title: "Salad"}, nil)

	if err := rs.SetNutrition(r.ID, model.RecipeNutrition{Calories: floatPtr(250)}); err != nil {
		t.Fatalf("set nutrition: %v", err)
	}
	if err := rs.SetNutrition(r.ID, model.RecipeNutrition{Calories: floatPtr(300), ProteinGrams: floatPtr(12)}); err != nil {
		t.Fatalf("set nutrition again: %v", err)
	}

	n, err := rs.GetNutrition(r.ID)
	if err != nil {
		t.Fatalf("get nutrition: %v", err)
	}
	if n == nil || n.Calories == nil || *n.Calories != 300 {
		t.Fatalf("nutrition = %+v, want calories 300", n)
	}
	if n.ProteinGrams == nil || *n.ProteinGrams != 12 {
		t.Errorf("protein = %v, want 12", n.ProteinGrams)
	}
	if n.FatGrams != nil {
		t.Error("expected unset field to stay nil")
	}
}

func TestRecipeNutritionMissing(t *testing.T) {
	rs, us, _, _ := setupRecipeTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	r, _ := rs.Create(u.ID, RecipeParams{Title: "Salad"}, nil)

	n, err := rs.GetNutrition(r.ID)
	if err != nil {
		t.Fatalf("get nutrition: %v", err)
	}
	if n != nil {
		t.Error("expected nil when no nutrition recorded")
	}
}
