// Package syntax verifies that structured target files still parse after a
// rewrite, so a marker pattern that matched the wrong span cannot leave a
// manifest broken on disk.
package syntax

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"gopkg.in/yaml.v3"
)

// Check parses content according to the file's extension. Files without a
// structured extension pass unchecked. Returns nil if the content is
// syntactically valid, or an error naming the file on failure.
func Check(path string, content []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := ValidateYAML(bytes.NewReader(content)); err != nil {
			return fmt.Errorf("YAML syntax error in %s: %w", path, err)
		}
	case ".json":
		if _, err := json.Parser().Unmarshal(content); err != nil {
			return fmt.Errorf("JSON syntax error in %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Parser().Unmarshal(content); err != nil {
			return fmt.Errorf("TOML syntax error in %s: %w", path, err)
		}
	}
	return nil
}

// ValidateYAML validates YAML syntax by streaming through the document.
// It uses yaml.Decoder to efficiently process large files without loading
// the entire content into memory.
//
// Returns nil if the YAML is syntactically valid, or an error with line
// information if syntax errors are found.
func ValidateYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if err == io.EOF {
				return nil // All documents valid
			}
			return err // Syntax error with line info
		}
	}
}
