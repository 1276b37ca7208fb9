// Command cli evaluates one or more compiled CQL libraries against a FHIR bundle from the command
// line, printing either raw expression results or a scored measure report as JSON.
//
// Unlike google/cql's own cmd/cli, which parses CQL concrete syntax via its ANTLR-generated
// parser, this binary reads libraries already expressed in the small ELM-like JSON shape decoded
// by elm.go: library resolution, FHIR retrieval, terminology, and evaluation wiring below follow
// _examples/google-cql/cmd/cli/cli.go's flag layout and evaluation order, trimmed of the
// GCS/FHIR-proto specific pieces this module's dependency set does not carry.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/cqlcore/interpreter"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/library"
	"github.com/example/cqlcore/measure"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/retriever/local"
	"github.com/example/cqlcore/terminology"
)

type cliConfig struct {
	libDir             string
	fhirBundlePath     string
	fhirTerminologyDir string
	executionTimestamp string
	measureDefPath     string
	jsonOutputPath     string
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "cli:", err)
		os.Exit(1)
	}
}

func parseFlags() cliConfig {
	var cfg cliConfig
	flag.StringVar(&cfg.libDir, "lib_dir", "", "directory of .cql files holding ELM-like JSON library documents (required)")
	flag.StringVar(&cfg.fhirBundlePath, "fhir_bundle", "", "path to a JSON FHIR R4 bundle to evaluate against")
	flag.StringVar(&cfg.fhirTerminologyDir, "fhir_terminology_dir", "", "directory of FHIR ValueSet/CodeSystem JSON resources")
	flag.StringVar(&cfg.executionTimestamp, "execution_timestamp_override", "", "RFC3339 timestamp Now()/Today() resolve against; defaults to the current time")
	flag.StringVar(&cfg.measureDefPath, "measure_def", "", "path to a JSON measure.Definition; when set, evaluation produces a measure.Report instead of raw expression results")
	flag.StringVar(&cfg.jsonOutputPath, "json_output", "", "file to write JSON results to; defaults to stdout")
	flag.Parse()
	return cfg
}

func run(cfg cliConfig) error {
	if cfg.libDir == "" {
		return fmt.Errorf("-lib_dir is required")
	}

	roots, err := libraryRootNames(cfg.libDir)
	if err != nil {
		return fmt.Errorf("reading -lib_dir: %w", err)
	}
	mgr := library.NewManager(library.NewFilesystemResolver(cfg.libDir), compileELM)
	libs, err := mgr.Resolve(roots...)
	if err != nil {
		return fmt.Errorf("resolving libraries: %w", err)
	}

	interpCfg := interpreter.Config{}
	if cfg.executionTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, cfg.executionTimestamp)
		if err != nil {
			return fmt.Errorf("-execution_timestamp_override: %w", err)
		}
		interpCfg.EvaluationTimestamp = ts
	}

	var patients []*resourcewrapper.Resource
	if cfg.fhirBundlePath != "" {
		b, err := os.ReadFile(cfg.fhirBundlePath)
		if err != nil {
			return fmt.Errorf("reading -fhir_bundle: %w", err)
		}
		retriever, err := local.NewFromR4Bundle(b)
		if err != nil {
			return fmt.Errorf("parsing -fhir_bundle: %w", err)
		}
		interpCfg.DataSource = retriever
		patients, err = patientsInBundle(b)
		if err != nil {
			return fmt.Errorf("listing patients in -fhir_bundle: %w", err)
		}
	}

	if cfg.fhirTerminologyDir != "" {
		provider, err := terminology.NewLocalFHIRProvider(cfg.fhirTerminologyDir)
		if err != nil {
			return fmt.Errorf("reading -fhir_terminology_dir: %w", err)
		}
		interpCfg.Terminology = provider
	}

	ctx := context.Background()
	var output any
	if cfg.measureDefPath != "" {
		report, err := runMeasure(ctx, cfg.measureDefPath, libs, interpCfg, patients)
		if err != nil {
			return err
		}
		output = report
	} else {
		libResults, err := interpreter.Eval(ctx, libs, interpCfg)
		if err != nil {
			return fmt.Errorf("evaluating libraries: %w", err)
		}
		output = libResults
	}

	return writeJSON(cfg.jsonOutputPath, output)
}

// measureDefJSON is the on-disk shape of a measure.Definition: measure.LibKey doesn't itself
// carry JSON tags, so -measure_def is decoded into this intermediate shape and translated.
type measureDefJSON struct {
	URL         string                            `json:"url"`
	LibraryName string                            `json:"libraryName"`
	LibraryVer  string                            `json:"libraryVersion"`
	Scoring     measure.Scoring                   `json:"scoring"`
	Populations map[measure.PopulationCode]string `json:"populations"`
	Stratifiers map[string]string                 `json:"stratifiers"`
}

func runMeasure(ctx context.Context, defPath string, libs []*model.Library, interpCfg interpreter.Config, patients []*resourcewrapper.Resource) (*measure.Report, error) {
	b, err := os.ReadFile(defPath)
	if err != nil {
		return nil, fmt.Errorf("reading -measure_def: %w", err)
	}
	var def measureDefJSON
	if err := json.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("parsing -measure_def: %w", err)
	}

	evaluator := &measure.Evaluator{
		Libs:   libs,
		Config: interpCfg,
		Def: measure.Definition{
			URL:         def.URL,
			Library:     result.LibKey{Name: def.LibraryName, Version: def.LibraryVer},
			Scoring:     def.Scoring,
			Populations: def.Populations,
			Stratifiers: def.Stratifiers,
		},
	}
	return evaluator.Evaluate(ctx, patients)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if path == "" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// libraryRootNames returns the library names to resolve: one per ".cql" file found directly in
// dir, since this binary's job is to evaluate every library it was pointed at, not a caller-named
// subset.
func libraryRootNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cql") {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(e.Name()), ".cql"))
	}
	return names, nil
}

// patientsInBundle re-decodes the bundle to pull out every Patient resource, since
// retriever.DataSource has no "list all resources of a type" accessor of its own beyond Retrieve,
// which needs a retriever.Query rather than a bare type name.
func patientsInBundle(jsonBundle []byte) ([]*resourcewrapper.Resource, error) {
	var b struct {
		Entry []struct {
			Resource map[string]any `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(jsonBundle, &b); err != nil {
		return nil, err
	}
	var patients []*resourcewrapper.Resource
	for _, e := range b.Entry {
		if e.Resource == nil {
			continue
		}
		typeName, _ := e.Resource["resourceType"].(string)
		if typeName != "Patient" {
			continue
		}
		patients = append(patients, resourcewrapper.New(typeName, e.Resource))
	}
	return patients, nil
}
