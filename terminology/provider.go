package terminology

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SubsumptionRelation is the result of a Subsumes query between two codes in the same system.
type SubsumptionRelation string

const (
	// Equivalent means the two codes are the same concept.
	Equivalent SubsumptionRelation = "equivalent"
	// Subsumes means the first code is a broader concept that subsumes the second.
	Subsumes SubsumptionRelation = "subsumes"
	// SubsumedBy means the first code is a narrower concept subsumed by the second.
	SubsumedBy SubsumptionRelation = "subsumed-by"
	// NotSubsumed means neither code subsumes the other.
	NotSubsumed SubsumptionRelation = "not-subsumed"
)

// Provider is the terminology trait the interpreter consumes to resolve ValueSet and CodeSystem
// membership and hierarchy without depending on any particular terminology server or local
// format.
type Provider interface {
	// Expand returns every Code that is a member of the ValueSet identified by url (and, if
	// non-empty, version).
	Expand(url, version string) ([]*Code, error)
	// Contains reports whether the given system+code pair is a member of the ValueSet identified
	// by url.
	Contains(url, version, system, code string) (bool, error)
	// Lookup returns the canonical Code information (including Display) for a system+code pair,
	// or ok=false if the code is not known to this provider.
	Lookup(system, code string) (*Code, bool, error)
	// Subsumes returns the hierarchical relation between codes a and b within system.
	Subsumes(system, a, b string) (SubsumptionRelation, error)
}

// Expand implements Provider by expanding the ValueSet's full member code list.
func (l *LocalFHIRProvider) Expand(url, version string) ([]*Code, error) {
	return l.ExpandValueSet(url, version)
}

// Contains implements Provider via ValueSet membership of a single system+code pair.
func (l *LocalFHIRProvider) Contains(url, version, system, code string) (bool, error) {
	return l.AnyInValueSet([]Code{{Code: code, System: system}}, url, version)
}

// Lookup implements Provider by looking code up in the latest loaded version of the CodeSystem
// whose URL is system; other CodeSystems and older versions are not searched.
func (l *LocalFHIRProvider) Lookup(system, code string) (*Code, bool, error) {
	cs, ok := l.latestCodeSystems[system]
	if !ok {
		return nil, false, nil
	}
	c := cs.code(codeKey{Value: code, System: system})
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// Subsumes implements Provider. The local FHIR CodeSystem format loaded here carries no
// hierarchy (no parent/child concept properties), so Subsumes only ever reports Equivalent or
// NotSubsumed; a terminology server backed Provider could report the full relation.
func (l *LocalFHIRProvider) Subsumes(system, a, b string) (SubsumptionRelation, error) {
	if a == b {
		return Equivalent, nil
	}
	return NotSubsumed, nil
}

// CachingProvider decorates a Provider with an LRU cache of ValueSet expansions, keyed by
// url+version, so repeated Retrieves against the same ValueSet do not re-walk its compose graph.
type CachingProvider struct {
	inner Provider
	cache *lru.Cache[string, []*Code]
}

// NewCachingProvider wraps inner with an LRU expansion cache holding up to size entries.
func NewCachingProvider(inner Provider, size int) (*CachingProvider, error) {
	cache, err := lru.New[string, []*Code](size)
	if err != nil {
		return nil, fmt.Errorf("terminology: %w", err)
	}
	return &CachingProvider{inner: inner, cache: cache}, nil
}

func expansionKey(url, version string) string {
	return url + "|" + version
}

// Expand returns the cached expansion for url+version, computing and caching it on first use.
func (c *CachingProvider) Expand(url, version string) ([]*Code, error) {
	key := expansionKey(url, version)
	if codes, ok := c.cache.Get(key); ok {
		return codes, nil
	}
	codes, err := c.inner.Expand(url, version)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, codes)
	return codes, nil
}

// Contains reports whether system+code is a member of the ValueSet, using the cached expansion.
func (c *CachingProvider) Contains(url, version, system, code string) (bool, error) {
	codes, err := c.Expand(url, version)
	if err != nil {
		return false, err
	}
	for _, existing := range codes {
		if existing.System == system && existing.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// Lookup delegates to the inner Provider; code lookups by system+code are not ValueSet-scoped so
// caching them would not save a compose-graph walk.
func (c *CachingProvider) Lookup(system, code string) (*Code, bool, error) {
	return c.inner.Lookup(system, code)
}

// Subsumes delegates to the inner Provider.
func (c *CachingProvider) Subsumes(system, a, b string) (SubsumptionRelation, error) {
	return c.inner.Subsumes(system, a, b)
}
