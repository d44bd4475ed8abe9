// Package schemafile reads and writes schemas as YAML so a table layout can
// be saved once and reused by the server, csvcheck and tabentry.
//
// Format:
//
//	version: 1
//	fields:
//	  - name: age
//	    type: number
//	  - name: joined
//	    type: date
package schemafile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/statentry/internal/core"
)

// Version is the file format version written by Marshal.
const Version = 1

// File is the on-disk form of a schema.
type File struct {
	Version int          `yaml:"version,omitempty"`
	Fields  []core.Field `yaml:"fields"`
}

// Load reads and parses a schema file.
func Load(path string) (core.Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified schema path
	if err != nil {
		return core.Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies the same name rules as a commit, so a file
// with blank or duplicate names is rejected with a *core.SchemaError.
func Parse(data []byte) (core.Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return core.Schema{}, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if f.Version != 0 && f.Version != Version {
		return core.Schema{}, fmt.Errorf("unsupported schema file version: %d", f.Version)
	}

	schema, err := core.NewSchema(f.Fields...)
	if err != nil {
		return core.Schema{}, fmt.Errorf("invalid schema file: %w", err)
	}
	return schema, nil
}

// Marshal encodes a schema as YAML.
func Marshal(schema core.Schema) ([]byte, error) {
	return yaml.Marshal(File{Version: Version, Fields: schema.Fields()})
}

// Save writes a schema file.
func Save(path string, schema core.Schema) error {
	data, err := Marshal(schema)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // schema files are not secret
}

// Apply drives sess through the normal draft and commit steps so the loaded
// schema replaces the current one exactly as if it had been typed in.
// Existing rows are discarded, as with any commit.
func Apply(sess *core.Session, schema core.Schema) error {
	fields := schema.Fields()
	if err := sess.DefineFieldCount(len(fields)); err != nil {
		return err
	}
	for i, f := range fields {
		if err := sess.UpdateDraftField(i, f.Name, f.Type); err != nil {
			return err
		}
	}
	_, err := sess.CommitSchema()
	return err
}
