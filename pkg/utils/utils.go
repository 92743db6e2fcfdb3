package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects config into a JSON schema with every definition
// inlined, so editors can use the file without resolving $defs.
func GetSchemaFromConfig(config any) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	schema := r.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
