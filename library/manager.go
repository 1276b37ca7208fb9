package library

import (
	"fmt"

	"gopkg.in/gyuho/goraph.v2"

	"github.com/example/cqlcore/model"
)

// CompileFunc translates one library's CQL source text into its compiled model.Library. It is
// supplied by the caller so this package stays independent of any particular parser.
type CompileFunc func(source string) (*model.Library, error)

// Manager resolves a set of root library names through a Resolver, compiling each with Compile
// and recursively following Includes, memoizing every compiled library by name+version so a
// library included from two different roots is only resolved and compiled once.
type Manager struct {
	resolver Resolver
	compile  CompileFunc

	compiled map[string]*model.Library
}

// NewManager builds a Manager that resolves includes through resolver and compiles source text
// with compile.
func NewManager(resolver Resolver, compile CompileFunc) *Manager {
	return &Manager{resolver: resolver, compile: compile, compiled: make(map[string]*model.Library)}
}

// Resolve compiles every library named in roots (each "name" or "name@version") along with every
// library it transitively includes, and returns the full set topologically ordered so that every
// library appears after every library it includes. Cyclic includes are reported as an error
// rather than silently broken.
func (m *Manager) Resolve(roots ...string) ([]*model.Library, error) {
	graph := goraph.NewGraph()
	if err := m.resolveAll(roots, graph); err != nil {
		return nil, err
	}

	sortedIDs, isValidDag := goraph.TopologicalSort(graph)
	if !isValidDag {
		return nil, fmt.Errorf("library: included libraries are not valid, found circular dependencies")
	}
	out := make([]*model.Library, 0, len(sortedIDs))
	for _, id := range sortedIDs {
		if lib, ok := m.compiled[id.String()]; ok {
			out = append(out, lib)
		}
	}
	return out, nil
}

func (m *Manager) resolveAll(names []string, graph goraph.Graph) error {
	for _, n := range names {
		name, version := splitNameVersion(n)
		if _, err := m.resolveOne(name, version, graph); err != nil {
			return err
		}
	}
	return nil
}

// resolveOne compiles the named library if it has not been already, adds it and its include edges
// to graph, and recurses into its Includes. It returns the library's memoization key.
func (m *Manager) resolveOne(name, version string, graph goraph.Graph) (string, error) {
	k := key(name, version)
	if _, ok := m.compiled[k]; ok {
		return k, nil
	}

	source, ok, err := m.resolver.Resolve(name, version)
	if err != nil {
		return "", fmt.Errorf("library: failed to resolve %q: %w", libLabel(name, version), err)
	}
	if !ok {
		return "", fmt.Errorf("library: could not find library %q in any configured resolver", libLabel(name, version))
	}

	lib, err := m.compile(source)
	if err != nil {
		return "", fmt.Errorf("library: failed to compile %q: %w", libLabel(name, version), err)
	}

	// Key by what the compiled library actually declares, which may carry a version the caller
	// didn't specify (an unversioned include resolving to a single concrete file).
	if lib.Identifier != nil {
		k = key(lib.Identifier.Qualified, lib.Identifier.Version)
	}
	m.compiled[k] = lib
	libNode := goraph.NewNode(k)
	graph.AddNode(libNode)

	for _, inc := range lib.Includes {
		includedKey, err := m.resolveOne(inc.Identifier.Qualified, inc.Identifier.Version, graph)
		if err != nil {
			return "", err
		}
		includedNode := goraph.NewNode(includedKey)
		if err := graph.AddEdge(includedNode.ID(), libNode.ID(), 1); err != nil {
			return "", fmt.Errorf("library: failed to order %q after its include %q: %w", libLabel(name, version), includedKey, err)
		}
	}
	return k, nil
}

func splitNameVersion(s string) (name, version string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '@' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func libLabel(name, version string) string {
	if version == "" {
		return name
	}
	return name + "@" + version
}
