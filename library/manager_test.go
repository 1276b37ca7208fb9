package library

import (
	"fmt"
	"strings"
	"testing"

	"github.com/example/cqlcore/model"
)

// fakeCompile is a minimal CompileFunc for tests: source is a comma separated
// "name,version,include1@version,include2,..." record, avoiding any dependency on a real parser.
func fakeCompile(source string) (*model.Library, error) {
	parts := strings.Split(source, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed fake library source %q", source)
	}
	lib := &model.Library{
		Identifier: &model.LibraryIdentifier{Element: &model.Element{}, Qualified: parts[0], Version: parts[1]},
	}
	for _, inc := range parts[2:] {
		if inc == "" {
			continue
		}
		name, version := splitNameVersion(inc)
		lib.Includes = append(lib.Includes, &model.Include{
			Element:    &model.Element{},
			Identifier: &model.LibraryIdentifier{Element: &model.Element{}, Qualified: name, Version: version},
		})
	}
	return lib, nil
}

func TestManagerResolvesIncludeGraphInOrder(t *testing.T) {
	resolver := NewInMemoryResolver(map[string]string{
		"Common":  "Common,1.0.0",
		"Helpers": "Helpers,1.0.0,Common@1.0.0",
		"Main":    "Main,1.0.0,Common@1.0.0,Helpers@1.0.0",
	})
	m := NewManager(resolver, fakeCompile)

	libs, err := m.Resolve("Main@1.0.0")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(libs) != 3 {
		t.Fatalf("Resolve returned %d libraries, want 3", len(libs))
	}

	position := make(map[string]int, len(libs))
	for i, lib := range libs {
		position[lib.Identifier.Qualified] = i
	}
	if position["Common"] >= position["Helpers"] {
		t.Errorf("Common must be ordered before Helpers, got order %v", position)
	}
	if position["Helpers"] >= position["Main"] {
		t.Errorf("Helpers must be ordered before Main, got order %v", position)
	}
}

func TestManagerMemoizesSharedIncludes(t *testing.T) {
	compileCount := map[string]int{}
	resolver := NewInMemoryResolver(map[string]string{
		"Common": "Common,1.0.0",
		"A":      "A,1.0.0,Common@1.0.0",
		"B":      "B,1.0.0,Common@1.0.0",
	})
	m := NewManager(resolver, func(source string) (*model.Library, error) {
		compileCount[source]++
		return fakeCompile(source)
	})

	if _, err := m.Resolve("A@1.0.0", "B@1.0.0"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := compileCount["Common,1.0.0"]; got != 1 {
		t.Errorf("Common was compiled %d times, want exactly once", got)
	}
}

func TestManagerDetectsCyclicIncludes(t *testing.T) {
	resolver := NewInMemoryResolver(map[string]string{
		"A": "A,1.0.0,B@1.0.0",
		"B": "B,1.0.0,A@1.0.0",
	})
	m := NewManager(resolver, fakeCompile)

	if _, err := m.Resolve("A@1.0.0"); err == nil {
		t.Error("Resolve with a cyclic include graph succeeded, want an error")
	}
}

func TestManagerReportsUnresolvableInclude(t *testing.T) {
	resolver := NewInMemoryResolver(map[string]string{
		"Main": "Main,1.0.0,Missing@1.0.0",
	})
	m := NewManager(resolver, fakeCompile)

	if _, err := m.Resolve("Main@1.0.0"); err == nil {
		t.Error("Resolve with a missing include succeeded, want an error")
	}
}
