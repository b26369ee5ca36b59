package search

import (
	"math"
	"strings"

	"github.com/54b3r/hrai-go/internal/candidate"
)

// Bonus labels, in the order they are applied.
const (
	BonusDoctorate  = "Doctorado (+0.2)"
	BonusMaster     = "Maestría (+0.1)"
	BonusExperience = "Tiene Experiencia (+0.05)"
)

const (
	doctorateBonus  = 0.20
	masterBonus     = 0.10
	experienceBonus = 0.05
)

var (
	doctorateMarkers = []string{"doctor", "phd"}
	masterMarkers    = []string{"maestr", "magister", "master"}
	affirmative      = map[string]bool{"si": true, "sí": true, "s": true, "true": true, "1": true}
)

// Score adds credential bonuses to a raw similarity and normalises the sum
// into [0, 1] rounded to four decimals. The doctorate and master's bonuses
// are mutually exclusive. Labels are returned in application order and the
// slice is never nil.
func Score(raw float64, profile *candidate.AcademicProfile) (float64, []string) {
	score := raw
	bonuses := []string{}

	if profile != nil {
		postgrad := strings.ToLower(profile.PostgraduateTitle)
		switch {
		case containsAny(postgrad, doctorateMarkers):
			score += doctorateBonus
			bonuses = append(bonuses, BonusDoctorate)
		case containsAny(postgrad, masterMarkers):
			score += masterBonus
			bonuses = append(bonuses, BonusMaster)
		}

		if affirmative[strings.ToLower(strings.TrimSpace(profile.HasExperience))] {
			score += experienceBonus
			bonuses = append(bonuses, BonusExperience)
		}
	}

	return roundScore(clamp01(score)), bonuses
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// clamp01 bounds v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// roundScore rounds to four decimal places.
func roundScore(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
