// Package registry talks to the remote person registry over HTTP.
//
// The client keeps no state besides its base URL: it does not cache, retry
// or time out. Callers refetch the full list after every mutation.
package registry

import (
	"context"

	"github.com/opticshield/opticshield/internal/person"
)

// Registry is the set of remote operations on person records.
type Registry interface {
	Create(ctx context.Context, req CreateRequest) (person.Person, error)
	List(ctx context.Context) ([]person.Person, error)
	UpdateClassification(ctx context.Context, id string, c person.Classification) error
	Remove(ctx context.Context, id string) error
}

// CreateRequest carries the fields sent when creating a record.
type CreateRequest struct {
	Name           string
	PersonID       string // sent only with the send-person-id flag
	Classification person.Classification
	Metadata       string
	Image          string // data URI or ""
}

// RequestFromDraft copies the submit-time fields of d.
func RequestFromDraft(d person.Draft) CreateRequest {
	return CreateRequest{
		Name:           d.Name,
		PersonID:       d.PersonID,
		Classification: d.Classification,
		Metadata:       d.Metadata,
		Image:          d.Image,
	}
}
