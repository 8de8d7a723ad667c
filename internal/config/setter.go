package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned when a key path is empty.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key path into its segments.
func ParseKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// documentRoot returns the mapping node a document edits, initializing an
// empty node into a document holding one mapping.
func documentRoot(root *yaml.Node) *yaml.Node {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		}
		return root.Content[0]
	}
	return root
}

// mappingValue returns the value node for key within a mapping, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// childMapping returns the mapping under key, creating it when absent.
func childMapping(mapping *yaml.Node, key string) (*yaml.Node, error) {
	if existing := mappingValue(mapping, key); existing != nil {
		if existing.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("key %q holds a %s, not a mapping", key, nodeKindName(existing.Kind))
		}
		return existing, nil
	}
	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		child,
	)
	return child, nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}

// SetNestedValue sets the value at keyPath inside the document rooted at
// root, creating intermediate mappings as needed. Existing nodes keep their
// comments and positions; only the addressed value changes.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if len(keyPath) == 0 {
		return ErrEmptyKeyPath
	}

	node := documentRoot(root)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("document root is a %s, not a mapping", nodeKindName(node.Kind))
	}
	for _, key := range keyPath[:len(keyPath)-1] {
		child, err := childMapping(node, key)
		if err != nil {
			return fmt.Errorf("key path %s: %w", strings.Join(keyPath, "."), err)
		}
		node = child
	}

	var encoded yaml.Node
	if err := encoded.Encode(value); err != nil {
		return fmt.Errorf("encoding value for %s: %w", strings.Join(keyPath, "."), err)
	}

	leaf := keyPath[len(keyPath)-1]
	if existing := mappingValue(node, leaf); existing != nil {
		// Replace content in place so the node keeps its comments.
		existing.Kind = encoded.Kind
		existing.Tag = encoded.Tag
		existing.Value = encoded.Value
		existing.Content = encoded.Content
		existing.Style = 0
		return nil
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: leaf},
		&encoded,
	)
	return nil
}

// GetNestedValue returns the node at keyPath, or nil when any segment is
// missing or the path is empty.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if len(keyPath) == 0 || root.Kind == 0 {
		return nil
	}
	node := documentRoot(root)
	for _, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		node = mappingValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

// SetConfigValue validates key and value against the schema registry and
// writes the updated value into the YAML config at configPath, creating the
// file (and its directory) when absent. Comments in an existing file are
// preserved.
func SetConfigValue(configPath, key, value string) error {
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return err
	}

	var root yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &root); err != nil {
				return fmt.Errorf("parsing %s: %w", configPath, err)
			}
		}
	case os.IsNotExist(err):
		// Start from an empty document.
	default:
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	if err := SetNestedValue(&root, keyPath, parsed.Parsed); err != nil {
		return err
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", configPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, out, 0o644)
}

// GetConfigValue reads the value at key from the YAML config at configPath.
// The second return reports whether the key was explicitly set in the file;
// when false, the schema default is returned instead.
func GetConfigValue(configPath, key string) (string, bool, error) {
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return "", false, err
	}
	schema, err := GetKeySchema(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("%v", schema.Default), false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", configPath, err)
	}

	var root yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return "", false, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}
	node := GetNestedValue(&root, keyPath)
	if node == nil {
		return fmt.Sprintf("%v", schema.Default), false, nil
	}
	return node.Value, true, nil
}
