package ingredient

import "strings"

// Categorize returns the store category for the given ingredient name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to "Other" if no match is found.
func Categorize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "Other"
	}

	// Phase 1: exact match
	if cat, ok := exactCategory[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range categoryKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return "Other"
}

var exactCategory = map[string]string{
	// Produce
	"apple":        "Produce",
	"banana":       "Produce",
	"orange":       "Produce",
	"lemon":        "Produce",
	"lime":         "Produce",
	"avocado":      "Produce",
	"tomato":       "Produce",
	"potato":       "Produce",
	"onion":        "Produce",
	"garlic":       "Produce",
	"shallot":      "Produce",
	"lettuce":      "Produce",
	"spinach":      "Produce",
	"kale":         "Produce",
	"broccoli":     "Produce",
	"carrot":       "Produce",
	"celery":       "Produce",
	"cucumber":     "Produce",
	"mushroom":     "Produce",
	"corn":         "Produce",
	"grape":        "Produce",
	"strawberry":   "Produce",
	"blueberry":    "Produce",
	"raspberry":    "Produce",
	"watermelon":   "Produce",
	"pineapple":    "Produce",
	"mango":        "Produce",
	"peach":        "Produce",
	"pear":         "Produce",
	"cilantro":     "Produce",
	"basil":        "Produce",
	"parsley":      "Produce",
	"mint":         "Produce",
	"rosemary":     "Produce",
	"thyme":        "Produce",
	"ginger":       "Produce",
	"jalapeño":     "Produce",
	"jalapeno":     "Produce",
	"zucchini":     "Produce",
	"asparagus":    "Produce",
	"green bean":   "Produce",
	"scallion":     "Produce",
	"leek":         "Produce",
	"eggplant":     "Produce",

	// Dairy
	"milk":           "Dairy",
	"egg":            "Dairy",
	"butter":         "Dairy",
	"cheese":         "Dairy",
	"yogurt":         "Dairy",
	"cream":          "Dairy",
	"cream cheese":   "Dairy",
	"sour cream":     "Dairy",
	"heavy cream":    "Dairy",
	"half and half":  "Dairy",
	"cottage cheese": "Dairy",
	"parmesan":       "Dairy",
	"mozzarella":     "Dairy",
	"cheddar":        "Dairy",
	"feta":           "Dairy",
	"ricotta":        "Dairy",

	// Meat & Seafood
	"chicken":       "Meat & Seafood",
	"beef":          "Meat & Seafood",
	"pork":          "Meat & Seafood",
	"turkey":        "Meat & Seafood",
	"bacon":         "Meat & Seafood",
	"sausage":       "Meat & Seafood",
	"ham":           "Meat & Seafood",
	"steak":         "Meat & Seafood",
	"salmon":        "Meat & Seafood",
	"shrimp":        "Meat & Seafood",
	"tuna":          "Meat & Seafood",
	"fish":          "Meat & Seafood",
	"ground beef":   "Meat & Seafood",
	"ground turkey": "Meat & Seafood",
	"lamb":          "Meat & Seafood",
	"crab":          "Meat & Seafood",
	"lobster":       "Meat & Seafood",
	"tilapia":       "Meat & Seafood",
	"cod":           "Meat & Seafood",
	"anchovy":       "Meat & Seafood",

	// Bakery
	"bread":     "Bakery",
	"bagel":     "Bakery",
	"tortilla":  "Bakery",
	"baguette":  "Bakery",
	"pita":      "Bakery",
	"naan":      "Bakery",
	"croissant": "Bakery",

	// Pantry
	"rice":             "Pantry",
	"pasta":            "Pantry",
	"flour":            "Pantry",
	"sugar":            "Pantry",
	"brown sugar":      "Pantry",
	"salt":             "Pantry",
	"pepper":           "Pantry",
	"black pepper":     "Pantry",
	"oil":              "Pantry",
	"olive oil":        "Pantry",
	"vegetable oil":    "Pantry",
	"sesame oil":       "Pantry",
	"vinegar":          "Pantry",
	"soy sauce":        "Pantry",
	"ketchup":          "Pantry",
	"mustard":          "Pantry",
	"mayonnaise":       "Pantry",
	"honey":            "Pantry",
	"peanut butter":    "Pantry",
	"jam":              "Pantry",
	"oat":              "Pantry",
	"oats":             "Pantry",
	"soup":             "Pantry",
	"broth":            "Pantry",
	"stock":            "Pantry",
	"bean":             "Pantry",
	"black bean":       "Pantry",
	"chickpea":         "Pantry",
	"lentil":           "Pantry",
	"quinoa":           "Pantry",
	"couscous":         "Pantry",
	"almond":           "Pantry",
	"walnut":           "Pantry",
	"spaghetti":        "Pantry",
	"noodle":           "Pantry",
	"maple syrup":      "Pantry",
	"hot sauce":        "Pantry",
	"salsa":            "Pantry",
	"tofu":             "Pantry",
	"cumin":            "Pantry",
	"paprika":          "Pantry",
	"oregano":          "Pantry",
	"cinnamon":         "Pantry",
	"nutmeg":           "Pantry",
	"turmeric":         "Pantry",
	"chili powder":     "Pantry",
	"curry powder":     "Pantry",
	"baking soda":      "Pantry",
	"baking powder":    "Pantry",
	"vanilla extract":  "Pantry",
	"yeast":            "Pantry",
	"cornstarch":       "Pantry",
	"tomato paste":     "Pantry",
	"coconut milk":     "Pantry",
	"breadcrumbs":      "Pantry",
	"panko":            "Pantry",

	// Frozen
	"ice cream":     "Frozen",
	"frozen peas":   "Frozen",
	"frozen corn":   "Frozen",
	"frozen spinach": "Frozen",
	"puff pastry":   "Frozen",

	// Beverages
	"water":  "Beverages",
	"juice":  "Beverages",
	"coffee": "Beverages",
	"tea":    "Beverages",
	"beer":   "Beverages",
	"wine":   "Beverages",

	// Snacks
	"chip":      "Snacks",
	"cracker":   "Snacks",
	"popcorn":   "Snacks",
	"pretzel":   "Snacks",
	"chocolate": "Snacks",
}

type categoryKeyword struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var categoryKeywords = []categoryKeyword{
	// Meat & Seafood, longer phrases first
	{"chicken breast", "Meat & Seafood"},
	{"chicken thigh", "Meat & Seafood"},
	{"chicken wing", "Meat & Seafood"},
	{"ground beef", "Meat & Seafood"},
	{"ground turkey", "Meat & Seafood"},
	{"ground pork", "Meat & Seafood"},
	{"pork chop", "Meat & Seafood"},
	{"pork loin", "Meat & Seafood"},

	// Dairy
	{"cream cheese", "Dairy"},
	{"sour cream", "Dairy"},
	{"heavy cream", "Dairy"},
	{"cottage cheese", "Dairy"},
	{"half and half", "Dairy"},
	{"greek yogurt", "Dairy"},
	{"almond milk", "Dairy"},
	{"oat milk", "Dairy"},
	{"yogurt", "Dairy"},
	{"cheese", "Dairy"},
	{"milk", "Dairy"},
	{"butter", "Dairy"},
	{"cream", "Dairy"},
	{"egg", "Dairy"},

	// Pepper flakes before the produce peppers below
	{"pepper flake", "Pantry"},

	// Produce
	{"baby spinach", "Produce"},
	{"green onion", "Produce"},
	{"sweet potato", "Produce"},
	{"bell pepper", "Produce"},
	{"red pepper", "Produce"},
	{"cherry tomato", "Produce"},
	{"romaine", "Produce"},
	{"arugula", "Produce"},
	{"cabbage", "Produce"},
	{"cauliflower", "Produce"},
	{"squash", "Produce"},
	{"melon", "Produce"},
	{"berry", "Produce"},
	{"berries", "Produce"},
	{"herb", "Produce"},
	{"lettuce", "Produce"},
	{"spinach", "Produce"},
	{"kale", "Produce"},
	{"apple", "Produce"},
	{"banana", "Produce"},
	{"tomato", "Produce"},
	{"potato", "Produce"},
	{"onion", "Produce"},
	{"carrot", "Produce"},
	{"celery", "Produce"},
	{"mushroom", "Produce"},
	{"chile", "Produce"},
	{"chili", "Produce"},

	// Bakery
	{"sourdough", "Bakery"},
	{"whole wheat", "Bakery"},
	{"bread", "Bakery"},
	{"bagel", "Bakery"},
	{"tortilla", "Bakery"},
	{"bun", "Bakery"},
	{"roll", "Bakery"},

	// Pantry
	{"peanut butter", "Pantry"},
	{"olive oil", "Pantry"},
	{"coconut oil", "Pantry"},
	{"maple syrup", "Pantry"},
	{"hot sauce", "Pantry"},
	{"soy sauce", "Pantry"},
	{"fish sauce", "Pantry"},
	{"pasta sauce", "Pantry"},
	{"tomato sauce", "Pantry"},
	{"tomato paste", "Pantry"},
	{"canned", "Pantry"},
	{"dried", "Pantry"},
	{"extract", "Pantry"},
	{"powder", "Pantry"},
	{"seed", "Pantry"},
	{"oatmeal", "Pantry"},
	{"granola", "Pantry"},
	{"rice", "Pantry"},
	{"pasta", "Pantry"},
	{"noodle", "Pantry"},
	{"flour", "Pantry"},
	{"sugar", "Pantry"},
	{"spice", "Pantry"},
	{"seasoning", "Pantry"},
	{"sauce", "Pantry"},
	{"vinegar", "Pantry"},
	{"broth", "Pantry"},
	{"stock", "Pantry"},
	{"bean", "Pantry"},
	{"lentil", "Pantry"},
	{"nut", "Pantry"},
	{"oil", "Pantry"},
	{"pepper", "Pantry"},

	// Frozen
	{"frozen", "Frozen"},
	{"ice cream", "Frozen"},

	// Beverages
	{"sparkling water", "Beverages"},
	{"orange juice", "Beverages"},
	{"coffee", "Beverages"},
	{"juice", "Beverages"},
	{"wine", "Beverages"},
	{"beer", "Beverages"},
}
