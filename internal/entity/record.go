package entity

// ContactInfo holds the contact block of a resume. Every field is best-effort
// and may be empty when the source document carries no usable anchor.
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Experience is one work or project entry. IsCurrent implies EndDate is
// absent or ignored.
type Experience struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
	IsCurrent   bool   `json:"is_current,omitempty"`
}

// Education is one education entry.
type Education struct {
	Degree         string `json:"degree,omitempty"`
	Institution    string `json:"institution,omitempty"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
	GPA            string `json:"gpa,omitempty"`
	Honors         string `json:"honors,omitempty"`
}

// ExtractedRecord is the structured candidate data produced by one extraction
// pass. It is an immutable value: regenerate builds a new record and swaps the
// job's current-record reference, never edits in place. ConfidenceScore is
// always the scorer's output, never hand-set.
type ExtractedRecord struct {
	ContactInfo     ContactInfo  `json:"contact_info"`
	Summary         string       `json:"summary,omitempty"`
	Experience      []Experience `json:"experience,omitempty"`
	Education       []Education  `json:"education,omitempty"`
	Skills          []string     `json:"skills,omitempty"`
	Certifications  []string     `json:"certifications,omitempty"`
	RawText         string       `json:"raw_text,omitempty"`
	Language        string       `json:"language,omitempty"`
	ConfidenceScore float64      `json:"confidence_score"`
}

// Clone returns a deep copy so callers never share mutable slices with a
// stored record.
func (r *ExtractedRecord) Clone() *ExtractedRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Experience = append([]Experience(nil), r.Experience...)
	cp.Education = append([]Education(nil), r.Education...)
	cp.Skills = append([]string(nil), r.Skills...)
	cp.Certifications = append([]string(nil), r.Certifications...)
	return &cp
}

// IsEmpty reports whether the record carries no extracted content at all.
func (r *ExtractedRecord) IsEmpty() bool {
	return r.ContactInfo == (ContactInfo{}) &&
		r.Summary == "" &&
		len(r.Experience) == 0 &&
		len(r.Education) == 0 &&
		len(r.Skills) == 0 &&
		len(r.Certifications) == 0
}
