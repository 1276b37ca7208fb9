// Package retriever defines the interface between the evaluator and the clinical data store CQL
// Retrieve expressions run against.
package retriever

import (
	"context"
	"time"

	"github.com/example/cqlcore/internal/resourcewrapper"
)

// DateRange restricts a Retrieve to resources whose date-valued element falls within [Low, High].
// A zero time.Time for either bound means unbounded on that side.
type DateRange struct {
	Low, High time.Time
}

// Query describes one Retrieve's filter criteria.
type Query struct {
	// ResourceType is the data model type to retrieve, e.g. "Patient", "Observation".
	ResourceType string
	// Context is the contextual resource the retrieve is scoped to (e.g. the current Patient),
	// or nil for an unscoped (population-wide) retrieve.
	Context *resourcewrapper.Resource
	// CodePath is the dotted property path to the coded element to filter on, e.g. "code.coding".
	CodePath string
	// Codes directly restricts matches to these system+code pairs; mutually exclusive in
	// practice with ValuesetURL but both may be set by a caller that has already expanded.
	Codes []Code
	// ValuesetURL, if set, is expanded by the caller (via the terminology Provider) before
	// Retrieve is called; DataSource implementations only ever see a resolved Codes list.
	ValuesetURL string
	// DatePath is the dotted property path to the date or Period valued element to filter on.
	DatePath string
	// DateRange restricts matches to DatePath falling within the range, if DatePath is set.
	DateRange *DateRange
}

// Code is a system+code pair used to filter a Retrieve.
type Code struct {
	System, Code string
}

// DataSource is implemented by callers to supply the resources a Retrieve expression reads.
type DataSource interface {
	// Retrieve returns every resource matching q.
	Retrieve(ctx context.Context, q Query) ([]*resourcewrapper.Resource, error)
	// ResolveReference returns the resource a FHIR-style reference string points to, or nil if
	// it cannot be resolved.
	ResolveReference(ctx context.Context, reference string) (*resourcewrapper.Resource, error)
}
