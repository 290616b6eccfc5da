package ingredient

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"ice cream", "Frozen"},
		{"coffee", "Beverages"},
		{"apple", "Produce"},
		{"cumin", "Pantry"},
		{"baking soda", "Pantry"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chicken breast", "Meat & Seafood"},
		{"boneless chicken thighs", "Meat & Seafood"},
		{"whole wheat bread", "Bakery"},
		{"frozen peas", "Frozen"},
		{"baby spinach", "Produce"},
		{"canned black beans", "Pantry"},
		{"greek yogurt", "Dairy"},
		{"chicken broth", "Pantry"},
		{"red pepper flakes", "Pantry"},
		{"red bell pepper", "Produce"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "Dairy"},
		{"Chicken", "Meat & Seafood"},
		{"Frozen Peas", "Frozen"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeEmptyString(t *testing.T) {
	got := Categorize("")
	if got != "Other" {
		t.Errorf("Categorize(%q) = %q, want %q", "", got, "Other")
	}
}

func TestCategorizeWhitespace(t *testing.T) {
	got := Categorize("  milk  ")
	if got != "Dairy" {
		t.Errorf("Categorize(%q) = %q, want %q", "  milk  ", got, "Dairy")
	}
}

func TestCategorizeUnknownIngredient(t *testing.T) {
	tests := []string{
		"mystery item",
		"xyz123",
	}
	for _, input := range tests {
		got := Categorize(input)
		if got != "Other" {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, "Other")
		}
	}
}
