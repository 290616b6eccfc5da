package ingredient

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeBasic(t *testing.T) {
	p := Normalize("2 tablespoons pizza sauce")

	if !p.ParsedSuccessfully {
		t.Fatal("expected successful parse")
	}
	if p.Quantity == nil || *p.Quantity != 2.0 {
		t.Errorf("quantity = %v, want 2.0", p.Quantity)
	}
	if p.Unit != "tablespoon" {
		t.Errorf("unit = %q, want %q", p.Unit, "tablespoon")
	}
	if p.Name != "pizza sauce" {
		t.Errorf("name = %q, want %q", p.Name, "pizza sauce")
	}
	if p.DisplayQuantity != "2 tablespoons" {
		t.Errorf("display quantity = %q, want %q", p.DisplayQuantity, "2 tablespoons")
	}
	if p.Text != "pizza sauce" {
		t.Errorf("text = %q, want %q", p.Text, "pizza sauce")
	}
	if p.RawText != "2 tablespoons pizza sauce" {
		t.Errorf("raw text = %q", p.RawText)
	}
}

func TestNormalizeQuantities(t *testing.T) {
	tests := []struct {
		input    string
		quantity float64
		unit     string
		name     string
	}{
		{"4 cups fresh corn kernels", 4, "cup", "fresh corn kernels"},
		{"1 1/2 cups flour", 1.5, "cup", "flour"},
		{"3/4 cup sugar", 0.75, "cup", "sugar"},
		{"2.5 pounds chicken thighs", 2.5, "pound", "chicken thighs"},
		{"1½ tablespoons mayonnaise", 1.5, "tablespoon", "mayonnaise"},
		{"½ teaspoon salt", 0.5, "teaspoon", "salt"},
		{"2 cups of flour", 2, "cup", "flour"},
		{"3 eggs", 3, "", "eggs"},
		{"1 lb ground beef", 1, "pound", "ground beef"},
	}

	for _, tt := range tests {
		p := Normalize(tt.input)
		if !p.ParsedSuccessfully {
			t.Errorf("Normalize(%q): expected success", tt.input)
			continue
		}
		if p.Quantity == nil || !almostEqual(*p.Quantity, tt.quantity) {
			t.Errorf("Normalize(%q).Quantity = %v, want %v", tt.input, p.Quantity, tt.quantity)
		}
		if p.Unit != tt.unit {
			t.Errorf("Normalize(%q).Unit = %q, want %q", tt.input, p.Unit, tt.unit)
		}
		if p.Name != tt.name {
			t.Errorf("Normalize(%q).Name = %q, want %q", tt.input, p.Name, tt.name)
		}
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		input string
		name  string
		notes string
		text  string
	}{
		{"2 cloves garlic, minced", "garlic", "minced", "garlic"},
		{"2 tablespoons olive oil, divided", "olive oil", "divided", "olive oil"},
		{"fresh basil, for garnish", "fresh basil", "for garnish", "fresh basil"},
		{"1 can black beans, drained, rinsed", "black beans", "drained, rinsed", "black beans"},
		{"2 cups flour (sifted)", "flour", "sifted", "flour"},
		{"1 onion, finely chopped", "onion", "finely chopped", "onion"},
	}

	for _, tt := range tests {
		p := Normalize(tt.input)
		if !p.ParsedSuccessfully {
			t.Errorf("Normalize(%q): expected success", tt.input)
			continue
		}
		if p.Name != tt.name {
			t.Errorf("Normalize(%q).Name = %q, want %q", tt.input, p.Name, tt.name)
		}
		if p.Notes != tt.notes {
			t.Errorf("Normalize(%q).Notes = %q, want %q", tt.input, p.Notes, tt.notes)
		}
		if p.Text != tt.text {
			t.Errorf("Normalize(%q).Text = %q, want %q", tt.input, p.Text, tt.text)
		}
	}
}

func TestNormalizeParentheticalBeforeName(t *testing.T) {
	p := Normalize("1 can (15 oz) black beans, drained")

	if p.Name != "black beans" {
		t.Errorf("name = %q, want %q", p.Name, "black beans")
	}
	if p.Unit != "can" {
		t.Errorf("unit = %q, want %q", p.Unit, "can")
	}
	if p.Notes != "drained, 15 oz" {
		t.Errorf("notes = %q, want %q", p.Notes, "drained, 15 oz")
	}
	if p.Text != "black beans" {
		t.Errorf("text = %q, want %q", p.Text, "black beans")
	}
}

func TestNormalizeConfidence(t *testing.T) {
	// Quantity with recognized unit plus a name averages the two sides.
	p := Normalize("2 tablespoons pizza sauce")
	if !almostEqual(p.Confidence, (confQuantityWithUnit+confName)/2) {
		t.Errorf("confidence = %v", p.Confidence)
	}

	// A bare quantity scores lower on the amount side.
	p = Normalize("3 eggs")
	if !almostEqual(p.Confidence, (confQuantityBare+confName)/2) {
		t.Errorf("confidence = %v", p.Confidence)
	}

	// No amount at all substitutes the default so a partial parse is not
	// penalized to zero.
	p = Normalize("salt")
	if !almostEqual(p.Confidence, (defaultConfidence+confName)/2) {
		t.Errorf("confidence = %v", p.Confidence)
	}
}

func TestNormalizeFallback(t *testing.T) {
	tests := []struct {
		input string
		name  string
	}{
		{"", ""},
		{"   ", ""},
		{"½", "½"},
		{"2", "2"},
	}

	for _, tt := range tests {
		p := Normalize(tt.input)
		if p.ParsedSuccessfully {
			t.Errorf("Normalize(%q): expected fallback", tt.input)
			continue
		}
		if p.Confidence != fallbackConfidence {
			t.Errorf("Normalize(%q).Confidence = %v, want %v", tt.input, p.Confidence, fallbackConfidence)
		}
		if p.Name != tt.name {
			t.Errorf("Normalize(%q).Name = %q, want %q", tt.input, p.Name, tt.name)
		}
		if p.Quantity != nil {
			t.Errorf("Normalize(%q).Quantity = %v, want nil", tt.input, p.Quantity)
		}
	}
}

func TestNormalizeNeverUppercasesName(t *testing.T) {
	p := Normalize("2 cups Parmesan Cheese")
	if p.Name != "parmesan cheese" {
		t.Errorf("name = %q, want %q", p.Name, "parmesan cheese")
	}
}

func TestNormalizeBatchSkipsBlankLines(t *testing.T) {
	parsed := NormalizeBatch([]string{"2 cups flour", "   ", "", "1 teaspoon vanilla"})
	if len(parsed) != 2 {
		t.Fatalf("batch size = %d, want 2", len(parsed))
	}
	if parsed[0].Name != "flour" || parsed[1].Name != "vanilla" {
		t.Errorf("unexpected batch contents: %q, %q", parsed[0].Name, parsed[1].Name)
	}
}

func TestBatchStats(t *testing.T) {
	parsed := NormalizeBatch([]string{"2 cups flour", "½"})
	stats := BatchStats(parsed)

	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ParsedSuccessfully != 1 {
		t.Errorf("parsed successfully = %d, want 1", stats.ParsedSuccessfully)
	}
	if !almostEqual(stats.SuccessRate, 0.5) {
		t.Errorf("success rate = %v, want 0.5", stats.SuccessRate)
	}
	want := (parsed[0].Confidence + parsed[1].Confidence) / 2
	if !almostEqual(stats.AverageConfidence, want) {
		t.Errorf("average confidence = %v, want %v", stats.AverageConfidence, want)
	}
}

func TestBatchStatsEmpty(t *testing.T) {
	stats := BatchStats(nil)
	if stats.Total != 0 || stats.SuccessRate != 0 || stats.AverageConfidence != 0 {
		t.Errorf("empty stats = %+v, want zero", stats)
	}
}
