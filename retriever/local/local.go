// Package local is an in-memory retriever.DataSource backed by a decoded JSON FHIR bundle.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/cqlcore/internal/datehelpers"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/retriever"
)

// Retriever implements retriever.DataSource by holding every resource of a FHIR bundle in
// memory, indexed by resource type and by "resourceType/id" reference string.
type Retriever struct {
	byType map[string][]*resourcewrapper.Resource
	byRef  map[string]*resourcewrapper.Resource
}

type bundleJSON struct {
	ResourceType string `json:"resourceType"`
	Entry        []struct {
		Resource map[string]any `json:"resource"`
	} `json:"entry"`
}

// NewFromR4Bundle initializes a local Retriever from a JSON encoded R4 FHIR bundle.
func NewFromR4Bundle(jsonBundle []byte) (*Retriever, error) {
	var b bundleJSON
	if err := json.Unmarshal(jsonBundle, &b); err != nil {
		return nil, fmt.Errorf("local retriever: %w", err)
	}
	r := &Retriever{
		byType: make(map[string][]*resourcewrapper.Resource),
		byRef:  make(map[string]*resourcewrapper.Resource),
	}
	for _, e := range b.Entry {
		if e.Resource == nil {
			continue
		}
		typeName, _ := e.Resource["resourceType"].(string)
		res := resourcewrapper.New(typeName, e.Resource)
		r.byType[typeName] = append(r.byType[typeName], res)
		if id := res.ResourceID(); id != "" {
			r.byRef[typeName+"/"+id] = res
		}
	}
	return r, nil
}

// Retrieve returns every resource of q.ResourceType passing q's code and date filters.
func (r *Retriever) Retrieve(ctx context.Context, q retriever.Query) ([]*resourcewrapper.Resource, error) {
	candidates := r.byType[q.ResourceType]
	out := make([]*resourcewrapper.Resource, 0, len(candidates))
	for _, res := range candidates {
		if len(q.Codes) > 0 && q.CodePath != "" {
			raw, err := res.Navigate(resourcewrapper.Path(q.CodePath))
			if err != nil {
				return nil, err
			}
			if !matchesAnyCode(raw, q.Codes) {
				continue
			}
		}
		if q.DateRange != nil && q.DatePath != "" {
			raw, err := res.Navigate(resourcewrapper.Path(q.DatePath))
			if err != nil {
				return nil, err
			}
			if !inDateRange(raw, *q.DateRange) {
				continue
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// ResolveReference returns the resource named by a "ResourceType/id" reference string.
func (r *Retriever) ResolveReference(ctx context.Context, reference string) (*resourcewrapper.Resource, error) {
	return r.byRef[reference], nil
}

// matchesAnyCode reports whether raw (a Coding, CodeableConcept, or list thereof, as decoded
// JSON) contains a system+code pair present in codes.
func matchesAnyCode(raw any, codes []retriever.Code) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case []any:
		for _, elem := range v {
			if matchesAnyCode(elem, codes) {
				return true
			}
		}
		return false
	case map[string]any:
		system, _ := v["system"].(string)
		code, _ := v["code"].(string)
		if code != "" {
			for _, c := range codes {
				if c.Code == code && (c.System == "" || c.System == system) {
					return true
				}
			}
		}
		if coding, ok := v["coding"]; ok {
			return matchesAnyCode(coding, codes)
		}
		return false
	default:
		return false
	}
}

// inDateRange reports whether raw (a FHIR date/dateTime string, or a Period object) falls
// within rng. A Period overlapping rng at all counts as a match.
func inDateRange(raw any, rng retriever.DateRange) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case string:
		t, _, err := datehelpers.ParseFHIRDateString(v, time.UTC)
		if err != nil {
			return false
		}
		return withinBounds(t, rng)
	case map[string]any:
		start, sok := v["start"].(string)
		end, eok := v["end"].(string)
		var startT, endT time.Time
		if sok {
			startT, _, _ = datehelpers.ParseFHIRDateString(start, time.UTC)
		}
		if eok {
			endT, _, _ = datehelpers.ParseFHIRDateString(end, time.UTC)
		}
		if !sok {
			startT = rng.Low
		}
		if !eok {
			endT = rng.High
		}
		return periodsOverlap(startT, endT, rng.Low, rng.High)
	default:
		return false
	}
}

func withinBounds(t time.Time, rng retriever.DateRange) bool {
	if !rng.Low.IsZero() && t.Before(rng.Low) {
		return false
	}
	if !rng.High.IsZero() && t.After(rng.High) {
		return false
	}
	return true
}

func periodsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !bStart.IsZero() && !aEnd.IsZero() && aEnd.Before(bStart) {
		return false
	}
	if !bEnd.IsZero() && !aStart.IsZero() && aStart.After(bEnd) {
		return false
	}
	return true
}
