package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed profile.schema.json
var schemaJSON []byte

const schemaURL = "https://bloomwatch.dev/schemas/profile.schema.json"

// Validator handles profile validation
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded profile schema
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates all profile files in a directory
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	profiles, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)

	if len(profiles) == 0 {
		return allErrors
	}

	return append(allErrors, v.Validate(profiles)...)
}

// Validate checks profiles against the schema and the cross-profile rules
func (v *Validator) Validate(profiles []ProfileWithFile) []ValidationError {
	var allErrors []ValidationError

	for _, pf := range profiles {
		allErrors = append(allErrors, v.validateSchema(pf)...)
	}

	return append(allErrors, validateExtraRules(profiles)...)
}

// validateSchema validates a single profile document against the JSON schema
func (v *Validator) validateSchema(pf ProfileWithFile) []ValidationError {
	if err := v.schema.Validate(pf.doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return extractSchemaErrors(pf.File, validationErr)
		}
		return []ValidationError{{File: pf.File, Message: err.Error()}}
	}
	return nil
}

// extractSchemaErrors flattens nested schema errors into leaf messages
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) > 0 {
		var out []ValidationError
		for _, cause := range err.Causes {
			out = append(out, extractSchemaErrors(file, cause)...)
		}
		return out
	}

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	return []ValidationError{{
		File:    file,
		Path:    path,
		Message: err.Error(),
	}}
}

// validateExtraRules applies rules the schema cannot express
func validateExtraRules(profiles []ProfileWithFile) []ValidationError {
	var errors []ValidationError

	idSeen := make(map[string]string)
	encounterSeen := make(map[int]string)
	for _, pf := range profiles {
		p := pf.Profile

		if prev, exists := idSeen[p.Metadata.ID]; exists {
			errors = append(errors, ValidationError{
				File:    pf.File,
				Path:    "metadata.id",
				Message: fmt.Sprintf("duplicate ID %q (also in %s)", p.Metadata.ID, filepath.Base(prev)),
			})
		} else {
			idSeen[p.Metadata.ID] = pf.File
		}

		if prev, exists := encounterSeen[p.Spec.EncounterID]; exists {
			errors = append(errors, ValidationError{
				File:    pf.File,
				Path:    "spec.encounterId",
				Message: fmt.Sprintf("duplicate encounter %d (also in %s)", p.Spec.EncounterID, filepath.Base(prev)),
			})
		} else {
			encounterSeen[p.Spec.EncounterID] = pf.File
		}

		if err := p.Policy().Validate(); err != nil {
			errors = append(errors, ValidationError{
				File:    pf.File,
				Path:    "spec.timing",
				Message: err.Error(),
			})
		}

		errors = append(errors, validateQuotas(pf.File, p)...)
	}

	return errors
}

// validateQuotas checks that every quota names a distinct boss per phase
func validateQuotas(file string, p *Profile) []ValidationError {
	if p.Spec.Phases == nil {
		return nil
	}

	var errors []ValidationError
	seen := make(map[string]bool)
	for i, q := range p.Spec.Phases.TankQuotas {
		key := fmt.Sprintf("%d/%s", q.Phase, q.Boss)
		if seen[key] {
			errors = append(errors, ValidationError{
				File:    file,
				Path:    fmt.Sprintf("spec.phases.tankQuotas[%d]", i),
				Message: fmt.Sprintf("boss %q already has a quota in phase %d", q.Boss, q.Phase),
			})
		}
		seen[key] = true
	}

	return errors
}
