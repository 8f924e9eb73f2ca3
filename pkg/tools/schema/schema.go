/*
Package schema turns Go parameter structs into JSON Schema tool descriptors and
checks incoming tool arguments against them.

Parameter structs describe each argument with struct tags:

	type ListParams struct {
		Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=1000,default=200" jsonschema_description:"Maximum number of items"`
	}

Fields tagged omitempty are optional; all others are required.
*/
package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	invopop "github.com/invopop/jsonschema"
)

// Reflect generates the input schema of the parameter struct P.
func Reflect[P any]() (json.RawMessage, error) {
	typ := reflect.TypeFor[P]()
	if typ.Kind() != reflect.Struct || typ.Name() == "" {
		return nil, fmt.Errorf("parameters must be a named struct, got %s", typ)
	}

	reflector := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	return json.Marshal(reflector.ReflectFromType(typ))
}

// Validator checks tool arguments against one input schema.
type Validator struct {
	resolved *jsonschema.Resolved
}

// Compile prepares raw for validation. Defaults declared in raw must satisfy
// their own schema.
func Compile(raw json.RawMessage) (*Validator, error) {
	var root jsonschema.Schema

	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}

	resolved, err := root.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, fmt.Errorf("resolving input schema: %w", err)
	}

	return &Validator{resolved: resolved}, nil
}

// Apply returns a copy of args with missing optional arguments set to their
// defaults. It fails when the result does not satisfy the schema.
func (v *Validator) Apply(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	maps.Copy(out, args)

	if err := v.resolved.ApplyDefaults(&out); err != nil {
		return nil, err
	}

	if err := v.resolved.Validate(out); err != nil {
		return nil, err
	}

	return out, nil
}
