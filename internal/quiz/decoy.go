package quiz

import (
	"sort"
	"strings"

	"hero-quiz-service/internal/domain"
)

// BuildDecoyBank collects wrong-answer pools from every hero except exceptSlug.
// Blank values are dropped here so the synthesizer never sees them. Pools are
// deduplicated and sorted, which makes the bank independent of input order.
func BuildDecoyBank(heroes []domain.Hero, exceptSlug string) domain.DecoyBank {
	places := make(map[string]struct{})
	recognitions := make(map[string]struct{})
	highlights := make(map[string]struct{})

	for _, h := range heroes {
		if h.Slug == exceptSlug {
			continue
		}
		if h.Birth != nil {
			addTrimmed(places, h.Birth.Place)
		}
		if h.Recognition != nil {
			addTrimmed(recognitions, h.Recognition.Basis)
		}
		for _, hl := range h.Highlights {
			addTrimmed(highlights, hl)
		}
	}

	return domain.DecoyBank{
		BirthPlaces:  sortedKeys(places),
		Eras:         domain.AllEras(),
		Recognitions: sortedKeys(recognitions),
		Highlights:   sortedKeys(highlights),
	}
}

func addTrimmed(set map[string]struct{}, s string) {
	if s = strings.TrimSpace(s); s != "" {
		set[s] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
