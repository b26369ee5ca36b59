package search

import (
	"strings"

	"github.com/54b3r/hrai-go/internal/candidate"
)

// Summary placeholders.
const (
	notAvailable      = "N/A"
	noAnalysisSummary = "Sin análisis disponible"
)

// BuildSummary renders the plain-text block shown with each result: the
// candidate's titles, availability and experience followed by the
// AI-generated CV analysis, or a placeholder when the CV was never analysed.
func BuildSummary(rec *candidate.Record) string {
	var p candidate.AcademicProfile
	if rec.Profile != nil {
		p = *rec.Profile
	}

	experience := p.ExperienceDetail
	if strings.TrimSpace(experience) == "" {
		experience = p.HasExperience
	}

	analysis := noAnalysisSummary
	if rec.Document.HasSummary() {
		analysis = strings.TrimSpace(rec.Document.Summary)
	}

	var b strings.Builder
	writeLine(&b, "Título", p.ProfessionalTitle)
	writeLine(&b, "Posgrado", p.PostgraduateTitle)
	writeLine(&b, "Disponibilidad", p.Availability)
	writeLine(&b, "Experiencia", experience)
	b.WriteString("Análisis:\n")
	b.WriteString(analysis)
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = notAvailable
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
