package constants

// Section names the recognized resume sections.
type Section string

const (
	SectionContact        Section = "contact_info"
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionOther          Section = "other"
)

// AllSections lists the sections in canonical document order.
var AllSections = []Section{
	SectionContact,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
}
