package profile

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Set resolves the profile for an encounter. Encounter 0 is the fallback.
type Set struct {
	byEncounter map[int]*Profile
}

// NewSet indexes profiles by encounter id. A fallback profile is required.
func NewSet(profiles []*Profile) (*Set, error) {
	s := &Set{byEncounter: make(map[int]*Profile, len(profiles))}
	for _, p := range profiles {
		if _, dup := s.byEncounter[p.Spec.EncounterID]; dup {
			return nil, fmt.Errorf("duplicate profile for encounter %d", p.Spec.EncounterID)
		}
		s.byEncounter[p.Spec.EncounterID] = p
	}
	if _, ok := s.byEncounter[0]; !ok {
		return nil, fmt.Errorf("no fallback profile (encounterId 0)")
	}
	return s, nil
}

// For returns the profile of an encounter, or the fallback.
func (s *Set) For(encounterID int) *Profile {
	if p, ok := s.byEncounter[encounterID]; ok {
		return p
	}
	return s.byEncounter[0]
}

// Profiles returns the indexed profiles.
func (s *Set) Profiles() []*Profile {
	out := make([]*Profile, 0, len(s.byEncounter))
	for _, p := range s.byEncounter {
		out = append(out, p)
	}
	return out
}

// BuiltinFiles loads the profiles shipped with the binary.
func BuiltinFiles() ([]ProfileWithFile, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to read builtin profiles: %w", err)
	}

	var out []ProfileWithFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		name := path.Join("builtin", e.Name())
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		pf, err := parse(name, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		out = append(out, pf)
	}
	return out, nil
}

// Builtin returns the validated built-in profile set.
func Builtin() (*Set, error) {
	files, err := BuiltinFiles()
	if err != nil {
		return nil, err
	}
	return build(files)
}

// Load validates the profiles in dir and layers them over the built-in
// ones; a directory profile replaces a built-in profile for the same
// encounter.
func Load(dir string) (*Set, error) {
	builtin, err := BuiltinFiles()
	if err != nil {
		return nil, err
	}

	loaded, loadErrs := LoadFromDirectory(dir)
	if len(loadErrs) > 0 {
		return nil, joinErrors(loadErrs)
	}

	overridden := make(map[int]bool, len(loaded))
	for _, pf := range loaded {
		overridden[pf.Profile.Spec.EncounterID] = true
	}

	files := loaded
	for _, pf := range builtin {
		if !overridden[pf.Profile.Spec.EncounterID] {
			files = append(files, pf)
		}
	}
	return build(files)
}

func build(files []ProfileWithFile) (*Set, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if errs := v.Validate(files); len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	profiles := make([]*Profile, 0, len(files))
	for _, pf := range files {
		profiles = append(profiles, pf.Profile)
	}
	return NewSet(profiles)
}

func joinErrors(errs []ValidationError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("invalid profiles:\n  %s", strings.Join(msgs, "\n  "))
}
