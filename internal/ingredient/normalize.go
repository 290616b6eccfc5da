// Package ingredient turns raw recipe ingredient lines like
// "2 tablespoons pizza sauce, divided" into structured records. Normalization
// is pure text processing: it performs no I/O and never fails; an
// unparsable line degrades to a low-confidence fallback record.
package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the structured form of one raw ingredient line.
type Parsed struct {
	// DisplayQuantity is the amount exactly as written ("2 tablespoons"),
	// preserving pluralization for display.
	DisplayQuantity string `json:"quantity"`
	// Quantity is the numeric amount for scaling math; nil when absent.
	Quantity *float64 `json:"quantity_value"`
	// Unit is the singular canonical unit ("tablespoon"); empty when absent.
	Unit string `json:"unit"`
	// Name is the trimmed, lower-cased ingredient name.
	Name string `json:"ingredient_name"`
	// Text is the cleaned display text: the raw line from the first name
	// token onward, with captured notes removed.
	Text string `json:"text"`
	// Notes holds preparation, comment, and purpose phrases joined by ", ".
	Notes              string  `json:"notes"`
	RawText            string  `json:"raw_text"`
	Confidence         float64 `json:"parsing_confidence"`
	ParsedSuccessfully bool    `json:"parsed_successfully"`
}

// Confidence scoring for the rule-based extractor. When a side of the parse
// produced nothing, defaultConfidence stands in so a partial parse is not
// penalized to zero.
const (
	defaultConfidence  = 0.8
	fallbackConfidence = 0.1

	confQuantityWithUnit = 0.95
	confQuantityBare     = 0.85
	confName             = 0.9
)

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	// quantityRe matches a leading amount: mixed fraction, bare fraction,
	// decimal, or integer.
	quantityRe = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+/\d+|\d+\.\d+|\d+)`)
)

// unicodeFractions maps vulgar fraction runes to their ascii spelling.
var unicodeFractions = map[rune]string{
	'¼': "1/4", '½': "1/2", '¾': "3/4",
	'⅓': "1/3", '⅔': "2/3",
	'⅕': "1/5", '⅖': "2/5", '⅗': "3/5", '⅘': "4/5",
	'⅙': "1/6", '⅚': "5/6",
	'⅛': "1/8", '⅜': "3/8", '⅝': "5/8", '⅞': "7/8",
}

// Normalize parses one raw ingredient line. It always returns a record: on
// any failure to locate an ingredient name the result is a fallback carrying
// the trimmed lower-cased input as the name with confidence 0.1.
func Normalize(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback(raw)
	}

	working := expandFractions(trimmed)

	// Pull parenthetical substrings out before tokenizing; their content
	// becomes comment notes.
	var parentheticals []string
	for _, m := range parentheticalRe.FindAllString(working, -1) {
		inner := strings.TrimSpace(strings.Trim(m, "()"))
		if inner != "" {
			parentheticals = append(parentheticals, inner)
		}
	}
	working = strings.TrimSpace(parentheticalRe.ReplaceAllString(working, " "))
	working = whitespaceRe.ReplaceAllString(working, " ")

	amountText, quantity, unit, rest := extractAmount(working)

	// The first comma splits the name from trailing preparation, comment,
	// and purpose phrases.
	segments := strings.Split(rest, ",")
	nameAsWritten := strings.TrimSpace(segments[0])
	if nameAsWritten == "" {
		return fallback(raw)
	}

	var prepNotes, commentNotes, purposeNotes []string
	for _, seg := range segments[1:] {
		phrase := strings.TrimSpace(seg)
		switch {
		case phrase == "":
		case strings.HasPrefix(strings.ToLower(phrase), "for "):
			purposeNotes = append(purposeNotes, phrase)
		case isPreparation(phrase):
			prepNotes = append(prepNotes, phrase)
		default:
			commentNotes = append(commentNotes, phrase)
		}
	}
	commentNotes = append(commentNotes, parentheticals...)

	noteParts := make([]string, 0, len(prepNotes)+len(commentNotes)+len(purposeNotes))
	noteParts = append(noteParts, prepNotes...)
	noteParts = append(noteParts, commentNotes...)
	noteParts = append(noteParts, purposeNotes...)

	amountConfidence := defaultConfidence
	if quantity != nil {
		if unit != "" {
			amountConfidence = confQuantityWithUnit
		} else {
			amountConfidence = confQuantityBare
		}
	}

	return Parsed{
		DisplayQuantity:    amountText,
		Quantity:           quantity,
		Unit:               unit,
		Name:               strings.ToLower(nameAsWritten),
		Text:               cleanedText(trimmed, nameAsWritten, noteParts),
		Notes:              strings.Join(noteParts, ", "),
		RawText:            raw,
		Confidence:         (amountConfidence + confName) / 2,
		ParsedSuccessfully: true,
	}
}

func fallback(raw string) Parsed {
	return Parsed{
		Name:               strings.ToLower(strings.TrimSpace(raw)),
		Text:               strings.TrimSpace(raw),
		RawText:            raw,
		Confidence:         fallbackConfidence,
		ParsedSuccessfully: false,
	}
}

// extractAmount consumes a leading quantity and optional unit token from the
// line. It returns the amount exactly as written, the numeric quantity, the
// canonical unit, and the remaining text.
func extractAmount(s string) (amountText string, quantity *float64, unit string, rest string) {
	m := quantityRe.FindString(s)
	if m == "" {
		return "", nil, "", s
	}

	q := parseQuantity(m)
	quantity = &q
	amountText = m
	rest = strings.TrimSpace(s[len(m):])

	if rest != "" {
		first, remainder, _ := strings.Cut(rest, " ")
		if u, ok := lookupUnit(first); ok {
			unit = u
			amountText = amountText + " " + first
			rest = strings.TrimSpace(remainder)
		}
	}

	// "2 cups of flour": the filler word is not part of the name.
	if lower := strings.ToLower(rest); strings.HasPrefix(lower, "of ") {
		rest = strings.TrimSpace(rest[3:])
	}

	return amountText, quantity, unit, rest
}

// parseQuantity evaluates an amount matched by quantityRe: "1 1/2", "3/4",
// "2.5", or "2".
func parseQuantity(s string) float64 {
	if whole, frac, ok := strings.Cut(s, " "); ok {
		return parseQuantity(whole) + parseQuantity(frac)
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, _ := strconv.ParseFloat(num, 64)
		d, _ := strconv.ParseFloat(den, 64)
		if d == 0 {
			return 0
		}
		return n / d
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// cleanedText produces the display text for a parsed line: the raw text from
// the first ingredient-name token onward, minus parentheticals and phrases
// already captured as notes, with whitespace collapsed and a trailing comma
// stripped.
func cleanedText(raw, nameAsWritten string, noteParts []string) string {
	text := raw
	if pos := strings.Index(raw, nameAsWritten); pos >= 0 {
		text = raw[pos:]
	}

	// Parentheticals whose content was captured as a note are dropped whole
	// so the same phrase does not appear in both fields.
	for _, paren := range parentheticalRe.FindAllString(text, -1) {
		inner := strings.TrimSpace(strings.Trim(paren, "()"))
		for _, note := range noteParts {
			if inner == note {
				text = strings.Replace(text, paren, "", 1)
				break
			}
		}
	}

	for _, note := range noteParts {
		text = strings.Replace(text, note, "", 1)
	}

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = strings.TrimRight(text, ", ")
	return text
}

// expandFractions rewrites vulgar fraction runes as ascii fractions so the
// quantity matcher sees "1 1/2" where the source had "1½".
func expandFractions(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { _, ok := unicodeFractions[r]; return ok }) {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		frac, ok := unicodeFractions[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		// "1½" reads as one and a half: keep a space between the whole
		// number and the fraction.
		if i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
			b.WriteByte(' ')
		}
		b.WriteString(frac)
	}
	return b.String()
}
