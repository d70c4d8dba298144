package observer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// validator checks client messages against the embedded schemas.
type validator struct {
	subscribe *jsonschema.Schema
	control   *jsonschema.Schema
}

func newValidator() (*validator, error) {
	c := jsonschema.NewCompiler()
	for _, name := range []string{"subscribe.schema.json", "control.schema.json"} {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}
		if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", name, err)
		}
	}

	v := &validator{}
	var err error
	if v.subscribe, err = c.Compile("subscribe.schema.json"); err != nil {
		return nil, fmt.Errorf("compiling subscribe schema: %w", err)
	}
	if v.control, err = c.Compile("control.schema.json"); err != nil {
		return nil, fmt.Errorf("compiling control schema: %w", err)
	}
	return v, nil
}

// decode validates raw against s and unmarshals it into dst.
func decode(s *jsonschema.Schema, raw []byte, dst any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
