package ingredient

import "strings"

// NormalizeBatch parses a slice of raw ingredient lines, skipping blank
// entries. The result keeps the input order of the non-blank lines.
func NormalizeBatch(lines []string) []Parsed {
	parsed := make([]Parsed, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed = append(parsed, Normalize(line))
	}
	return parsed
}

// Stats summarizes parsing success over a batch.
type Stats struct {
	Total              int     `json:"total"`
	ParsedSuccessfully int     `json:"parsed_successfully"`
	SuccessRate        float64 `json:"success_rate"`
	AverageConfidence  float64 `json:"average_confidence"`
}

// BatchStats computes success rate and mean confidence for a parsed batch.
func BatchStats(parsed []Parsed) Stats {
	if len(parsed) == 0 {
		return Stats{}
	}

	var ok int
	var confidence float64
	for _, p := range parsed {
		if p.ParsedSuccessfully {
			ok++
		}
		confidence += p.Confidence
	}

	return Stats{
		Total:              len(parsed),
		ParsedSuccessfully: ok,
		SuccessRate:        float64(ok) / float64(len(parsed)),
		AverageConfidence:  confidence / float64(len(parsed)),
	}
}
