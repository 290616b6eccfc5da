package store

import "testing"

func TestIngredientResolveCreates(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	ing, err := is.Resolve("Black Beans")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ing.Name != "black beans" {
		t.Errorf("name = %q, want %q", ing.Name, "black beans")
	}
	if ing.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if ing.Category == nil || *ing.Category != "Pantry" {
		t.Errorf("category = %v, want Pantry", ing.Category)
	}
}

func TestIngredientResolveCategorizesUnknown(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	ing, err := is.Resolve("mystery item")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ing.Category == nil || *ing.Category != "Other" {
		t.Errorf("category = %v, want Other", ing.Category)
	}
}

func TestIngredientResolveDedupes(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	first, err := is.Resolve("flour")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := is.Resolve("  FLOUR ")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resolve returned id %d, want %d", second.ID, first.ID)
	}
}

func TestIngredientResolveKeepsVariantsDistinct(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	corn, _ := is.Resolve("corn")
	kernels, _ := is.Resolve("corn kernels")
	if corn.ID == kernels.ID {
		t.Error("expected distinct catalog entries for distinct names")
	}
}

func TestIngredientGetByName(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	created, _ := is.Resolve("paprika")

	ing, err := is.GetByName("paprika")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if ing == nil || ing.ID != created.ID {
		t.Fatalf("get by name = %+v, want id %d", ing, created.ID)
	}

	missing, err := is.GetByName("unobtainium")
	if err != nil {
		t.Fatalf("get by unknown name: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown ingredient")
	}
}

func TestIngredientSearch(t *testing.T) {
	is := NewIngredientStore(openTestDB(t))

	is.Resolve("red onion")
	is.Resolve("onion powder")
	is.Resolve("garlic")

	results, err := is.Search("onion", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("search results = %d, want 2", len(results))
	}
}
