package appmanifest

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaResource is the name under which the embedded schema is compiled.
const schemaResource = "manifest.schema.json"

// manifestSchema is the JSON schema describing a valid application manifest.
//
//go:embed schemas/manifest.schema.json
var manifestSchema string

//nolint:gochecknoglobals // The compiled schema is immutable and shared.
var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaCompile  error
)

// compileSchema compiles the embedded schema once per process.
func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(schemaResource, strings.NewReader(manifestSchema)); err != nil {
			schemaCompile = fmt.Errorf("add manifest schema: %w", err)
			return
		}

		compiledSchema, schemaCompile = compiler.Compile(schemaResource)
	})

	return compiledSchema, schemaCompile
}

// CheckSchema validates the document against the embedded manifest schema.
// The build pipeline relies on the typed accessors instead, so that absent
// and malformed fields stay distinguishable; this check backs the stricter
// package verification path.
func (d *Document) CheckSchema() error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	if err = schema.Validate(d.root.Interface()); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	return nil
}
