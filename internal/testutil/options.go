package testutil

import (
	"github.com/opticshield/opticshield/internal/person"
)

// PersonOption customises a person built by NewPerson.
type PersonOption func(*person.Person)

// WithClassification sets the flag.
func WithClassification(c person.Classification) PersonOption {
	return func(p *person.Person) { p.Classification = c }
}

// WithMetadata sets the annotation. Use WithoutMetadata for an absent one.
func WithMetadata(m string) PersonOption {
	return func(p *person.Person) { p.Metadata = &m }
}

// WithoutMetadata clears the annotation.
func WithoutMetadata() PersonOption {
	return func(p *person.Person) { p.Metadata = nil }
}

// WithImage attaches a data URI.
func WithImage(uri string) PersonOption {
	return func(p *person.Person) { p.Image = uri }
}

// NewPerson returns a whitelisted person with no metadata or image.
func NewPerson(id, name string, opts ...PersonOption) person.Person {
	p := person.Person{ID: id, Name: name, Classification: person.Whitelist}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// TinyPNG is a valid 1x1 PNG as a data URI.
const TinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
