// Package utils holds helpers shared by the command line and the price sources.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema reflects t into an inlined JSON schema document.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// GetSchemaFromConfig reflects config into a JSON schema that keeps its
// definitions under $defs.
func GetSchemaFromConfig(config any) (string, error) {
	schema := jsonschema.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// ToYAMLSchema reflects t using its yaml tags for property names, for use by
// editors that validate YAML documents. Only fields tagged required in their
// jsonschema tag are required.
func ToYAMLSchema[T any](t T) (string, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
