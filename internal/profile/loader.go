package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory discovers and loads all profile files from a directory
func LoadFromDirectory(dirPath string) ([]ProfileWithFile, []ValidationError) {
	var profiles []ProfileWithFile
	var errors []ValidationError

	files, err := discoverYAMLFiles(dirPath)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errors
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to read file: %v", err),
			})
			continue
		}

		pf, err := parse(file, data)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}
		profiles = append(profiles, pf)
	}

	return profiles, errors
}

// discoverYAMLFiles finds all *.yaml and *.yml files in a directory
func discoverYAMLFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// parse decodes one profile document both into the typed struct and into a
// generic tree for schema validation
func parse(file string, data []byte) (ProfileWithFile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return ProfileWithFile{}, err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ProfileWithFile{}, err
	}

	return ProfileWithFile{Profile: &p, File: file, doc: doc}, nil
}
