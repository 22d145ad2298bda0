package common

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas.
const (
	SchemaMachineCreate     = "machine_create"
	SchemaMachineUpdate     = "machine_update"
	SchemaMachineStatus     = "machine_status"
	SchemaMaintenanceCreate = "maintenance_create"
	SchemaMaintenanceUpdate = "maintenance_update"
)

// MaxBodyBytes caps the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemasErr = fmt.Errorf("failed to read schemas: %w", err)
		return
	}

	schemas = make(map[string]*gojsonschema.Schema, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			schemasErr = fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			schemasErr = fmt.Errorf("failed to compile schema %s: %w", e.Name(), err)
			return
		}
		schemas[strings.TrimSuffix(e.Name(), ".json")] = s
	}
}

// ValidationError is a request body that failed schema validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid request body"
	}
	return "invalid request body: " + strings.Join(e.Errors, "; ")
}

// ValidateJSON checks doc against the named schema.
func ValidateJSON(schema string, doc []byte) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return schemasErr
	}

	s, ok := schemas[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}

	res, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// The document is not JSON at all.
		return &ValidationError{Errors: []string{"body is not valid JSON"}}
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		msgs = append(msgs, re.String())
	}
	return &ValidationError{Errors: msgs}
}

// DecodeJSON reads the request body, validates it against schema and
// decodes it into dst.
func DecodeJSON(r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ValidationError{Errors: []string{"body too large"}}
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return &ValidationError{Errors: []string{"body is required"}}
	}

	if err := ValidateJSON(schema, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}
	return nil
}
