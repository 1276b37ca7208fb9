// Package library resolves named CQL library includes to source text, compiles them, and orders
// the resulting model.Library set the way an Include graph requires.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver converts a library name and optional version to CQL source text. It returns ok=false,
// rather than an error, when the library is simply not known to this resolver - composite
// resolvers rely on that to fall through to the next candidate.
type Resolver interface {
	Resolve(name, version string) (source string, ok bool, err error)
}

// FilesystemResolver searches a list of directories for a CQL source file matching name and
// version, trying, in order: "{name}.cql", "{name}-{version}.cql", "{name}/{name}.cql", then a
// case-insensitive match of "{name}.cql" and "{name}-{version}.cql" against the files directly in
// the directory. The nested "{name}/{name}.cql" pattern is not repeated case-insensitively.
type FilesystemResolver struct {
	SearchPath []string
}

// NewFilesystemResolver returns a FilesystemResolver searching the given directories in order.
func NewFilesystemResolver(searchPath ...string) *FilesystemResolver {
	return &FilesystemResolver{SearchPath: searchPath}
}

func (r *FilesystemResolver) Resolve(name, version string) (string, bool, error) {
	candidates := filenameCandidates(name, version)
	for _, dir := range r.SearchPath {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if b, err := os.ReadFile(path); err == nil {
				return string(b), true, nil
			}
		}
		// Case-insensitive fallback: list the directory once and match candidate names
		// case-insensitively against what is actually on disk.
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, candidate := range candidates {
			for _, entry := range entries {
				if entry.IsDir() || !strings.EqualFold(entry.Name(), filepath.Base(candidate)) {
					continue
				}
				b, err := os.ReadFile(filepath.Join(dir, entry.Name()))
				if err != nil {
					return "", false, err
				}
				return string(b), true, nil
			}
		}
	}
	return "", false, nil
}

func filenameCandidates(name, version string) []string {
	candidates := []string{name + ".cql"}
	if version != "" {
		candidates = append(candidates, fmt.Sprintf("%s-%s.cql", name, version))
	}
	candidates = append(candidates, filepath.Join(name, name+".cql"))
	return candidates
}

// InMemoryResolver resolves libraries from a fixed name/version -> source map, keyed the same way
// as result.LibKey.Key(): "{name}" when no version is given, "{name} {version}" otherwise.
type InMemoryResolver map[string]string

// NewInMemoryResolver builds an InMemoryResolver from a name -> source map. Use Add for versioned
// entries.
func NewInMemoryResolver(sources map[string]string) InMemoryResolver {
	r := make(InMemoryResolver, len(sources))
	for name, source := range sources {
		r[name] = source
	}
	return r
}

// Add registers source under name and, if version is non-empty, under "name version" as well so
// both a versioned and unversioned include can find it.
func (r InMemoryResolver) Add(name, version, source string) {
	r[name] = source
	if version != "" {
		r[key(name, version)] = source
	}
}

func (r InMemoryResolver) Resolve(name, version string) (string, bool, error) {
	if version != "" {
		if source, ok := r[key(name, version)]; ok {
			return source, true, nil
		}
	}
	source, ok := r[name]
	return source, ok, nil
}

func key(name, version string) string {
	return name + " " + version
}

// CompositeResolver tries each of its member Resolvers in order, returning the first hit.
type CompositeResolver []Resolver

// NewCompositeResolver builds a CompositeResolver trying each resolver in the given order.
func NewCompositeResolver(resolvers ...Resolver) CompositeResolver {
	return CompositeResolver(resolvers)
}

func (r CompositeResolver) Resolve(name, version string) (string, bool, error) {
	for _, sub := range r {
		source, ok, err := sub.Resolve(name, version)
		if err != nil {
			return "", false, err
		}
		if ok {
			return source, true, nil
		}
	}
	return "", false, nil
}
