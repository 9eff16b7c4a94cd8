package presentation

import (
	"github.com/opticshield/opticshield/internal/encoder"
	"github.com/opticshield/opticshield/internal/person"
)

// PersonDTO represents a registry record for command output. The inline
// image is summarised rather than printed.
type PersonDTO struct {
	ID         string  `json:"id"`
	DisplayID  string  `json:"display_id,omitempty"`
	Name       string  `json:"name"`
	Flag       string  `json:"flag"`
	Metadata   *string `json:"metadata"` // null when the record has none
	ImageMIME  string  `json:"image_mime,omitempty"`
	ImageBytes int     `json:"image_bytes,omitempty"`
}

// FromPerson converts a record to its DTO.
func FromPerson(p person.Person) PersonDTO {
	dto := PersonDTO{
		ID:        p.ID,
		DisplayID: p.DisplayID,
		Name:      p.Name,
		Flag:      string(p.Classification),
		Metadata:  p.Metadata,
	}
	if p.HasImage() {
		if info, err := encoder.ParseDataURI(p.Image); err == nil {
			dto.ImageMIME = info.MIME
			dto.ImageBytes = info.Size
		} else {
			dto.ImageMIME = "unknown"
		}
	}
	return dto
}

// FromPersons converts a snapshot, preserving order. The result is never nil.
func FromPersons(persons []person.Person) []PersonDTO {
	out := make([]PersonDTO, 0, len(persons))
	for _, p := range persons {
		out = append(out, FromPerson(p))
	}
	return out
}
