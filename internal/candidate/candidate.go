// Package candidate defines the candidate model read by the search pipeline.
// Records are owned by the relational store; this package only describes them.
package candidate

import "strings"

// Record is a candidate profile hydrated from the relational store.
type Record struct {
	// ID is the unique candidate identifier.
	ID int64
	// FullName is the candidate's display name.
	FullName string
	// Email is the contact email address.
	Email string
	// Phone is the contact phone number.
	Phone string
	// Profile holds academic and experience data. Nil when the candidate has
	// no profile row.
	Profile *AcademicProfile
	// Sites is the candidate's location membership.
	Sites SiteSet
	// Document is the candidate's CV link. Nil when none was registered.
	Document *DocumentLink
}

// AcademicProfile is the free-text academic and availability data captured
// for a candidate. Empty strings mean the value was not provided.
type AcademicProfile struct {
	// ProfessionalTitle is the undergraduate/professional degree.
	ProfessionalTitle string
	// PostgraduateTitle is the highest postgraduate degree, if any.
	PostgraduateTitle string
	// Availability describes when or how the candidate can work.
	Availability string
	// HasExperience is the free-text experience flag ("Sí", "No", ...).
	HasExperience string
	// ExperienceDetail describes the candidate's experience.
	ExperienceDetail string
}

// DocumentLink points at the candidate's CV and its generated analysis.
type DocumentLink struct {
	// URL is the external location of the CV document.
	URL string
	// Summary is the AI-generated structured summary. Empty when the
	// document has not been analysed yet.
	Summary string
}

// HasSummary reports whether a non-blank structured summary is present.
func (d *DocumentLink) HasSummary() bool {
	return d != nil && strings.TrimSpace(d.Summary) != ""
}
