package person

import "strings"

// Draft holds the creation-time fields of a record that has not been
// submitted yet. It is never persisted.
type Draft struct {
	Name           string
	PersonID       string // client-side identifier hint
	Classification Classification
	Metadata       string
	Image          string // encoded data URI, empty when no image is attached
	ImagePath      string // file selected for Image
}

// NewDraft returns an empty draft with the default classification.
func NewDraft() Draft {
	return Draft{Classification: DefaultClassification}
}

// MissingRequired reports whether name or person id is blank.
func (d Draft) MissingRequired() bool {
	return strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.PersonID) == ""
}

// IsZero reports whether d equals a freshly reset draft.
func (d Draft) IsZero() bool {
	return d == NewDraft()
}
