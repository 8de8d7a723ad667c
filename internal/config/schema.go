package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeFloat
	TypeDuration
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "version.monotonic")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of scalar configuration keys reachable through
// 'relsync config set' and 'relsync config get'. Structured sections
// (targets, assets) are edited in the config file directly.
var KnownKeys = map[string]ConfigKeySchema{
	"version.pattern": {
		Path:        "version.pattern",
		Type:        TypeString,
		Description: "Regular expression a new version must match",
		Default:     `^\d{4}\.\d{2}\.\d+$`,
	},
	"version.monotonic": {
		Path:        "version.monotonic",
		Type:        TypeBool,
		Description: "Refuse bumps that go backward",
		Default:     false,
	},
	"git.commit": {
		Path:        "git.commit",
		Type:        TypeBool,
		Description: "Commit the synchronized files after a bump",
		Default:     false,
	},
	"git.tag": {
		Path:        "git.tag",
		Type:        TypeBool,
		Description: "Create an annotated release tag after a bump",
		Default:     false,
	},
	"git.tag_prefix": {
		Path:        "git.tag_prefix",
		Type:        TypeString,
		Description: "Prefix for release tag names",
		Default:     "v",
	},
	"git.message": {
		Path:        "git.message",
		Type:        TypeString,
		Description: "Commit and tag message template; {version} is substituted",
		Default:     "Release {version}",
	},
	"watch.interval": {
		Path:        "watch.interval",
		Type:        TypeDuration,
		Description: "Fallback re-check cadence for 'relsync watch' (e.g., 2s, 1m)",
		Default:     "2s",
	},
	"fetch.concurrency": {
		Path:        "fetch.concurrency",
		Type:        TypeInt,
		Description: "Parallel downloads for 'relsync fetch'",
		Default:     4,
	},
	"skip_confirmations": {
		Path:        "skip_confirmations",
		Type:        TypeBool,
		Description: "Skip confirmation prompts",
		Default:     false,
	},
}

// KnownKeyPaths returns every registered key in sorted order, for help text
// and error messages.
func KnownKeyPaths() []string {
	paths := make([]string, 0, len(KnownKeys))
	for path := range KnownKeys {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeFloat:
		return parseFloatValue(value)
	case TypeDuration:
		return parseDurationValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseFloatValue parses and validates a float value.
func parseFloatValue(value string) (ParsedValue, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid float: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: f, Type: TypeFloat}, nil
}

// parseDurationValue parses and validates a duration value.
func parseDurationValue(value string) (ParsedValue, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 2s, 5m, 1h30m)", value)
	}
	return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
