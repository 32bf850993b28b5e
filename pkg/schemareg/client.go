package schemareg

import (
	"context"
	"errors"
)

// Latest selects the most recent version of a subject in GetVersion.
const Latest = 0

var (
	// ErrSubjectNotFound is returned when the registry has no such subject.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrVersionNotFound is returned when the subject exists but the
	// requested version does not.
	ErrVersionNotFound = errors.New("version not found")
	// ErrSchemaNotFound is returned when no schema exists for a global id.
	ErrSchemaNotFound = errors.New("schema not found")
)

// Client is the capability set the replication engine needs from a schema
// registry. The HTTP binding below implements it; tests substitute an
// in-memory fake.
type Client interface {
	// ListSubjects returns every subject name known to the registry.
	ListSubjects(ctx context.Context) ([]string, error)
	// ListVersions returns the version numbers of a subject in ascending
	// order. Fails with ErrSubjectNotFound when the subject is absent.
	ListVersions(ctx context.Context, subject string) ([]int, error)
	// GetVersion fetches one version of a subject. Pass Latest for the
	// most recent version.
	GetVersion(ctx context.Context, subject string, version int) (SchemaDocument, error)
	// GetByGlobalID fetches a schema document by its registry-wide id.
	GetByGlobalID(ctx context.Context, id int) (SchemaDocument, error)
	// RegisterVersion appends a new version to a subject, creating the
	// subject when needed.
	RegisterVersion(ctx context.Context, subject string, req RegisterRequest) (RegisterResponse, error)
}
