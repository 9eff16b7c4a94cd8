// Package person defines the person record tracked by the registry and its
// identity classification.
package person

import (
	"fmt"
	"strings"
)

// Classification is the identity list a person belongs to.
type Classification string

const (
	Whitelist Classification = "whitelist"
	Blacklist Classification = "blacklist"
	Watchlist Classification = "watchlist"
)

// DefaultClassification is assigned to new drafts and to records the server
// returns without a flag.
const DefaultClassification = Whitelist

// Classifications returns every classification in cycle order.
func Classifications() []Classification {
	return []Classification{Whitelist, Blacklist, Watchlist}
}

// Next returns the successor in the fixed cycle
// whitelist -> blacklist -> watchlist -> whitelist.
// An invalid value restarts the cycle at whitelist.
func (c Classification) Next() Classification {
	switch c {
	case Whitelist:
		return Blacklist
	case Blacklist:
		return Watchlist
	default:
		return Whitelist
	}
}

// Prev returns the predecessor in the cycle.
func (c Classification) Prev() Classification {
	switch c {
	case Blacklist:
		return Whitelist
	case Watchlist:
		return Blacklist
	default:
		return Watchlist
	}
}

// Valid reports whether c is one of the three known classifications.
func (c Classification) Valid() bool {
	switch c {
	case Whitelist, Blacklist, Watchlist:
		return true
	}
	return false
}

func (c Classification) String() string {
	return string(c)
}

// Label returns the capitalized display name ("Whitelist").
func (c Classification) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseClassification converts s (case-insensitive, surrounding space ignored)
// into a Classification. An empty string yields DefaultClassification.
func ParseClassification(s string) (Classification, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultClassification, nil
	}
	c := Classification(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown classification %q (want whitelist, blacklist or watchlist)", s)
	}
	return c, nil
}

// Person is a registry record as returned by the remote service. ID keys
// every action; DisplayID is a secondary server id shown in its place.
type Person struct {
	ID             string         `json:"id"`
	DisplayID      string         `json:"displayId,omitempty"`
	Name           string         `json:"name"`
	Classification Classification `json:"flag"`
	Metadata       *string        `json:"metadata,omitempty"`
	Image          string         `json:"image,omitempty"`
}

// ShownID is the id to display: DisplayID when set, else ID.
func (p Person) ShownID() string {
	if p.DisplayID != "" {
		return p.DisplayID
	}
	return p.ID
}

// HasImage reports whether the record carries an inline image.
func (p Person) HasImage() bool {
	return p.Image != ""
}

// MetadataText returns the annotation or "" when absent.
func (p Person) MetadataText() string {
	if p.Metadata == nil {
		return ""
	}
	return *p.Metadata
}
