package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the launcher configuration file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&LauncherConfig{})
	schema.Title = "Task runner launcher configuration"
	return json.MarshalIndent(schema, "", "  ")
}
