package matching

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Kind classifies what a free-text schedule query refers to.
type Kind string

const (
	KindAll        Kind = "all"
	KindDoctor     Kind = "doctor"
	KindDepartment Kind = "department"
	KindNotFound   Kind = "not_found"
)

// Config holds the acceptance thresholds on the 0-100 similarity scale.
// Reads tolerate looser matches than mutations.
type Config struct {
	QueryThreshold    int
	MutationThreshold int
}

func DefaultConfig() Config {
	return Config{
		QueryThreshold:    60,
		MutationThreshold: 80,
	}
}

// Resolution is the outcome of classifying a query. Key is the exact
// canonical doctor or department name; lookups after resolution must use it
// verbatim, never the raw query. Score is only meaningful for doctor and
// department kinds.
type Resolution struct {
	Kind  Kind
	Key   string
	Score int
}

// Broad intents skip similarity scoring entirely: "show me all doctors"
// must not partially match some doctor's name instead.
var catchAllMarkers = []string{"all", "schedule", "doctors", "anyone"}

// Resolve classifies a query against the known doctor and department names.
// The first matching rule wins: catch-all markers, then the best fuzzy
// interpretation above threshold with the department preferred over a doctor
// on comparable scores (specialty words read much closer to department names
// than to personal names, and a department answer is the more informative
// one). Anything below threshold is NotFound; a wrong hint is worse than an
// honest miss. Empty inputs score zero and are never an error.
func Resolve(query string, doctors, departments []string, threshold int) Resolution {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Resolution{Kind: KindNotFound}
	}

	for _, marker := range catchAllMarkers {
		if strings.Contains(q, marker) {
			return Resolution{Kind: KindAll}
		}
	}

	bestDoctor, doctorScore := BestMatch(query, doctors)
	bestDept, deptScore := BestMatch(query, departments)

	switch {
	case deptScore > threshold && deptScore > doctorScore:
		return Resolution{Kind: KindDepartment, Key: bestDept, Score: deptScore}
	case doctorScore > threshold:
		return Resolution{Kind: KindDoctor, Key: bestDoctor, Score: doctorScore}
	default:
		return Resolution{Kind: KindNotFound}
	}
}

// BestMatch returns the highest-scoring choice and its score. An empty
// choice list scores zero.
func BestMatch(query string, choices []string) (string, int) {
	best := ""
	bestScore := 0

	for _, choice := range choices {
		if score := fuzzy.WRatio(query, choice); score > bestScore {
			best = choice
			bestScore = score
		}
	}

	return best, bestScore
}

// ResolveDoctor resolves a doctor name for a mutation. The threshold here is
// stricter than for queries and nothing is returned below it.
func ResolveDoctor(query string, doctors []string, threshold int) (string, bool) {
	name, score := BestMatch(query, doctors)
	if score < threshold {
		return "", false
	}

	return name, true
}

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"Daily",
}

// ResolveDay maps a fuzzy day reference ("Mon", "wednsday") onto the closed
// weekday set. The vocabulary is small and closed, so the best match always
// wins without a threshold.
func ResolveDay(query string) string {
	day, _ := BestMatch(query, weekdays)
	if day == "" {
		return "Daily"
	}

	return day
}
