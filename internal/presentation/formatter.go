package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatPersons formats a snapshot as a JSON array
func (f *Formatter) FormatPersons(persons []PersonDTO) error {
	return f.encode(persons)
}

// FormatPerson formats a single record as JSON
func (f *Formatter) FormatPerson(p PersonDTO) error {
	return f.encode(p)
}

// FormatResult formats a command result such as {"deleted": "<id>"}
func (f *Formatter) FormatResult(result any) error {
	return f.encode(result)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
