package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

//go:embed schema/client-launcher.schema.json
var settingsSchema []byte

const settingsSchemaName = "client-launcher.schema.json"

// ValidateAgainstSchema compiles schema under name and validates the JSON
// document data against it. ref selects a sub-schema ("#/definitions/x").
func ValidateAgainstSchema(name string, schema []byte, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}
	sch, err := compiler.Compile(name + ref)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", name, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation against %s failed: %w", name, err)
	}
	return nil
}

// ValidateSettingsJSON checks a launcher settings document in JSON form.
func ValidateSettingsJSON(data []byte) error {
	return ValidateAgainstSchema(settingsSchemaName, settingsSchema, data, "")
}

// ValidateSettingsYAML converts a YAML settings file to JSON and validates it.
// An empty document is valid.
func ValidateSettingsYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(jsonData), []byte("null")) {
		return nil
	}
	return ValidateSettingsJSON(jsonData)
}
