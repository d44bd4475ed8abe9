package core

import "github.com/invopop/jsonschema"

// JSONSchema describes the shape of a row submission for this schema, one
// property per field in column order. Every property is nullable since a
// missing or blank value is stored as null.
func (s Schema) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, f := range s.fields {
		props.Set(f.Name, fieldJSONSchema(f))
	}
	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "row",
		Description: "A single data row keyed by variable name.",
		Type:        "object",
		Properties:  props,
	}
}

func fieldJSONSchema(f Field) *jsonschema.Schema {
	value := &jsonschema.Schema{Title: f.Name, Description: f.Type.String()}
	switch f.Type {
	case Number:
		value.Type = "number"
	case Date:
		value.Type = "string"
		value.Format = "date"
	default:
		value.Type = "string"
	}
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{value, {Type: "null"}},
	}
}
