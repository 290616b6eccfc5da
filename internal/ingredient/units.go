package ingredient

import "strings"

// canonicalUnits maps every recognized unit token, including plural and
// abbreviated forms, to its singular canonical spelling. Matching is
// case-insensitive; the table holds lowercase keys.
var canonicalUnits = map[string]string{
	"cup": "cup", "cups": "cup", "c": "cup",
	"tablespoon": "tablespoon", "tablespoons": "tablespoon", "tbsp": "tablespoon", "tbs": "tablespoon",
	"teaspoon": "teaspoon", "teaspoons": "teaspoon", "tsp": "teaspoon",
	"gram": "gram", "grams": "gram", "g": "gram",
	"kilogram": "kilogram", "kilograms": "kilogram", "kg": "kilogram",
	"milligram": "milligram", "milligrams": "milligram", "mg": "milligram",
	"milliliter": "milliliter", "milliliters": "milliliter", "ml": "milliliter",
	"liter": "liter", "liters": "liter", "litre": "liter", "litres": "liter", "l": "liter",
	"ounce": "ounce", "ounces": "ounce", "oz": "ounce",
	"pound": "pound", "pounds": "pound", "lb": "pound", "lbs": "pound",
	"pint": "pint", "pints": "pint",
	"quart": "quart", "quarts": "quart",
	"gallon": "gallon", "gallons": "gallon",
	"pinch": "pinch", "pinches": "pinch",
	"dash": "dash", "dashes": "dash",
	"clove": "clove", "cloves": "clove",
	"can": "can", "cans": "can",
	"jar": "jar", "jars": "jar",
	"slice": "slice", "slices": "slice",
	"stick": "stick", "sticks": "stick",
	"bunch": "bunch", "bunches": "bunch",
	"head": "head", "heads": "head",
	"package": "package", "packages": "package", "pkg": "package",
	"piece": "piece", "pieces": "piece",
	"sprig": "sprig", "sprigs": "sprig",
	"stalk": "stalk", "stalks": "stalk",
	"handful": "handful", "handfuls": "handful",
}

// lookupUnit returns the canonical singular form of a unit token and whether
// the token is a recognized unit.
func lookupUnit(token string) (string, bool) {
	u, ok := canonicalUnits[strings.ToLower(strings.TrimSuffix(token, "."))]
	return u, ok
}

// preparationWords are single-token cooking preparations that mark a
// comma-separated trailing phrase as a preparation note rather than a
// free-form comment.
var preparationWords = map[string]bool{
	"chopped":   true,
	"diced":     true,
	"minced":    true,
	"sliced":    true,
	"grated":    true,
	"shredded":  true,
	"peeled":    true,
	"crushed":   true,
	"cubed":     true,
	"halved":    true,
	"quartered": true,
	"trimmed":   true,
	"drained":   true,
	"rinsed":    true,
	"melted":    true,
	"softened":  true,
	"beaten":    true,
	"whisked":   true,
	"divided":   true,
	"packed":    true,
	"sifted":    true,
	"toasted":   true,
	"crumbled":  true,
	"zested":    true,
	"juiced":    true,
	"cooked":    true,
	"thawed":    true,
}

// isPreparation reports whether a trailing phrase reads as a preparation
// instruction. The first word decides: "finely chopped" and "chopped fine"
// both qualify because at least one token is a known preparation word.
func isPreparation(phrase string) bool {
	for _, tok := range strings.Fields(strings.ToLower(phrase)) {
		if preparationWords[tok] {
			return true
		}
	}
	return false
}
