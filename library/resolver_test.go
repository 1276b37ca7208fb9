package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Common.cql"), "library Common version '1.0.0'")
	writeFile(t, filepath.Join(dir, "Versioned-2.0.0.cql"), "library Versioned version '2.0.0'")
	nested := filepath.Join(dir, "Nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(nested, "Nested.cql"), "library Nested version '1.0.0'")

	tests := []struct {
		name    string
		lib     string
		version string
		want    string
	}{
		{name: "bare name", lib: "Common", want: "library Common version '1.0.0'"},
		{name: "versioned filename", lib: "Versioned", version: "2.0.0", want: "library Versioned version '2.0.0'"},
		{name: "nested directory", lib: "Nested", want: "library Nested version '1.0.0'"},
		{name: "case insensitive", lib: "common", want: "library Common version '1.0.0'"},
	}
	r := NewFilesystemResolver(dir)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok, err := r.Resolve(test.lib, test.version)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) returned error: %v", test.lib, test.version, err)
			}
			if !ok {
				t.Fatalf("Resolve(%q, %q) = not found, want %q", test.lib, test.version, test.want)
			}
			if got != test.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", test.lib, test.version, got, test.want)
			}
		})
	}

	if _, ok, err := r.Resolve("DoesNotExist", ""); err != nil || ok {
		t.Errorf("Resolve(DoesNotExist) = (%v, %v), want (_, false, nil)", ok, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInMemoryResolver(t *testing.T) {
	r := NewInMemoryResolver(map[string]string{"Helpers": "library Helpers"})
	r.Add("Versioned", "1.0.0", "library Versioned version '1.0.0'")

	if got, ok, _ := r.Resolve("Helpers", ""); !ok || got != "library Helpers" {
		t.Errorf("Resolve(Helpers) = (%q, %v), want (%q, true)", got, ok, "library Helpers")
	}
	if got, ok, _ := r.Resolve("Versioned", "1.0.0"); !ok || got != "library Versioned version '1.0.0'" {
		t.Errorf("Resolve(Versioned, 1.0.0) = (%q, %v), want ok", got, ok)
	}
	if got, ok, _ := r.Resolve("Versioned", ""); !ok || got != "library Versioned version '1.0.0'" {
		t.Errorf("Resolve(Versioned, \"\") = (%q, %v), want it to fall back to the unversioned entry", got, ok)
	}
	if _, ok, _ := r.Resolve("Missing", ""); ok {
		t.Errorf("Resolve(Missing) = found, want not found")
	}
}

func TestCompositeResolver(t *testing.T) {
	first := NewInMemoryResolver(map[string]string{"A": "from first"})
	second := NewInMemoryResolver(map[string]string{"A": "from second", "B": "from second"})
	r := NewCompositeResolver(first, second)

	if got, _, _ := r.Resolve("A", ""); got != "from first" {
		t.Errorf("Resolve(A) = %q, want the first resolver's value %q", got, "from first")
	}
	if got, _, _ := r.Resolve("B", ""); got != "from second" {
		t.Errorf("Resolve(B) = %q, want the second resolver's value %q", got, "from second")
	}
	if _, ok, _ := r.Resolve("C", ""); ok {
		t.Errorf("Resolve(C) = found, want not found since no sub-resolver has it")
	}
}
