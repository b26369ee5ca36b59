package search

import (
	"sort"
)

// Scored is a hydrated hit with its final score and the bonuses that fired.
type Scored struct {
	Hydrated
	FinalScore float64
	Bonuses    []string
}

// ScoreAll applies Score to every hydrated hit, keeping order.
func ScoreAll(items []Hydrated) []Scored {
	scored := make([]Scored, 0, len(items))
	for _, h := range items {
		final, bonuses := Score(h.Hit.RawScore, h.Record.Profile)
		scored = append(scored, Scored{Hydrated: h, FinalScore: final, Bonuses: bonuses})
	}
	return scored
}

// Assemble renders scored items as results. With OrderByScore the results
// are sorted by final score descending and candidate ID ascending; any other
// order keeps the input (retrieval) order.
func Assemble(items []Scored, order Order) []Result {
	if order == OrderByScore {
		sorted := make([]Scored, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if a.FinalScore != b.FinalScore {
				return a.FinalScore > b.FinalScore
			}
			return a.Hit.ID < b.Hit.ID
		})
		items = sorted
	}

	results := make([]Result, 0, len(items))
	for _, it := range items {
		results = append(results, toResult(it))
	}
	return results
}

func toResult(s Scored) Result {
	rec := s.Record
	r := Result{
		ID:         rec.ID,
		Name:       rec.FullName,
		Email:      rec.Email,
		Phone:      rec.Phone,
		RawScore:   roundScore(s.Hit.RawScore),
		FinalScore: s.FinalScore,
		Sites:      rec.Sites.Active(),
		Summary:    BuildSummary(rec),
		Bonuses:    s.Bonuses,
	}
	if rec.Profile != nil {
		r.ProfessionalTitle = rec.Profile.ProfessionalTitle
		r.PostgraduateTitle = rec.Profile.PostgraduateTitle
	}
	if r.Bonuses == nil {
		r.Bonuses = []string{}
	}
	return r
}
