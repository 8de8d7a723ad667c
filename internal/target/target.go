// Package target models one synchronized file: where it lives, how its
// version marker is located, and how the marker line is rewritten without
// disturbing the rest of the file.
//
// All three marker kinds compile down to a line regexp with exactly one
// capture group spanning the version value. Find insists on exactly one
// matching line per file; a rewrite replaces only the captured span, so
// quoting, separators, indentation, and trailing comments survive untouched.
package target

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/falkyre/relsync/internal/errors"
)

// Kind selects the marker strategy for a target.
type Kind string

const (
	// Raw targets hold the version as the file's only content, a plain
	// VERSION file.
	Raw Kind = "raw"
	// Assignment targets carry a KEY = "VALUE" style line: version in a
	// manifest, __version__ in a source file, VERSION in a shell script.
	Assignment Kind = "assignment"
	// Pattern targets bring their own regexp with one capture group
	// marking the version span.
	Pattern Kind = "pattern"
)

// Descriptor declares one target in configuration. It is immutable once
// compiled; changing a descriptor means editing the config and rerunning.
type Descriptor struct {
	// Path is the file, relative to the config file's directory.
	Path string `koanf:"path" yaml:"path" validate:"required"`
	// Kind selects how the marker is located.
	Kind Kind `koanf:"kind" yaml:"kind" validate:"required,oneof=raw assignment pattern"`
	// Key names the left-hand side of an assignment marker. Required for
	// the assignment kind, unused otherwise.
	Key string `koanf:"key" yaml:"key,omitempty"`
	// Pattern is the custom line regexp for the pattern kind. It must
	// contain exactly one capture group spanning the version value.
	Pattern string `koanf:"pattern" yaml:"pattern,omitempty"`
}

// marker name used in errors, so "no version marker found in VERSION" and
// "no __version__ marker found in config_server.py" both read naturally.
func (d Descriptor) markerName() string {
	switch d.Kind {
	case Assignment:
		return d.Key
	case Pattern:
		return "pattern"
	default:
		return "version"
	}
}

// Marker is a located version line within a target file.
type Marker struct {
	// Line is the 1-based line number the marker sits on.
	Line int
	// Text is the full line, exactly as read.
	Text string
	// Value is the version the marker currently carries.
	Value string
}

// Target is a compiled Descriptor, ready to locate and rewrite its marker.
type Target struct {
	// Desc is the descriptor this target was compiled from.
	Desc Descriptor

	re *regexp.Regexp
}

// rawLine matches a line whose only content is the version value. Blank
// lines never match, so a trailing newline does not count as a second
// candidate.
var rawLine = regexp.MustCompile(`^\s*(\S+)\s*$`)

// Compile builds a Target from a descriptor. Errors are configuration
// errors: a kind outside the enum, a missing assignment key, or a custom
// pattern that does not compile to exactly one capture group.
func Compile(desc Descriptor) (*Target, error) {
	switch desc.Kind {
	case Raw:
		return &Target{Desc: desc, re: rawLine}, nil

	case Assignment:
		if desc.Key == "" {
			return nil, errors.NewConfigError(
				fmt.Sprintf("target %s: assignment kind requires a key", desc.Path),
				"Set key to the marker's left-hand side, e.g. key: version",
			)
		}
		return &Target{Desc: desc, re: assignmentPattern(desc.Key)}, nil

	case Pattern:
		if desc.Pattern == "" {
			return nil, errors.NewConfigError(
				fmt.Sprintf("target %s: pattern kind requires a pattern", desc.Path),
				"Set pattern to a regexp with one capture group around the version",
			)
		}
		re, err := regexp.Compile(desc.Pattern)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("target %s: invalid pattern %q: %v", desc.Path, desc.Pattern, err),
				"Patterns use Go regular expression syntax",
			)
		}
		if re.NumSubexp() != 1 {
			return nil, errors.NewConfigError(
				fmt.Sprintf("target %s: pattern %q has %d capture groups, need exactly 1",
					desc.Path, desc.Pattern, re.NumSubexp()),
				"Wrap the version span in parentheses: 'Standards-Version: (\\S+)'",
				"Make other groups non-capturing with (?:...)",
			)
		}
		return &Target{Desc: desc, re: re}, nil

	default:
		return nil, errors.NewConfigError(
			fmt.Sprintf("target %s: unknown kind %q", desc.Path, desc.Kind),
			"Valid kinds are raw, assignment, and pattern",
		)
	}
}

// CompileAll compiles every descriptor, preserving declaration order. The
// first bad descriptor fails the whole set; a run never starts with a
// half-usable target list.
func CompileAll(descs []Descriptor) ([]*Target, error) {
	targets := make([]*Target, 0, len(descs))
	for _, desc := range descs {
		tgt, err := Compile(desc)
		if err != nil {
			return nil, err
		}
		targets = append(targets, tgt)
	}
	return targets, nil
}

// assignmentPattern builds the marker regexp for a KEY = "VALUE" line. The
// separator may be = or :, the value may be bare, single-, or double-quoted,
// and a trailing comment is allowed. Only the value itself is captured.
func assignmentPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(
		`^\s*` + regexp.QuoteMeta(key) + `\s*[:=]\s*["']?([^"'\s]+)["']?\s*(?:#.*)?$`)
}

// Find locates the target's single marker line in content. Zero matches or
// more than one match is an error; ambiguity is never resolved by picking
// the first occurrence.
func (t *Target) Find(content string) (Marker, error) {
	lines := strings.Split(content, "\n")

	var found []Marker
	for i, line := range lines {
		m := t.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		found = append(found, Marker{Line: i + 1, Text: line, Value: m[1]})
	}
	switch len(found) {
	case 0:
		return Marker{}, errors.MarkerNotFound(t.Desc.Path, t.Desc.markerName())
	case 1:
		return found[0], nil
	default:
		return Marker{}, errors.MarkerAmbiguous(t.Desc.Path, t.Desc.markerName(), len(found))
	}
}

// Rewrite returns line with the captured version span replaced by
// newVersion. Every byte outside the span is preserved. The line must be
// one that Find already matched.
func (t *Target) Rewrite(line, newVersion string) string {
	idx := t.re.FindStringSubmatchIndex(line)
	if idx == nil || idx[2] < 0 {
		return line
	}
	return line[:idx[2]] + newVersion + line[idx[3]:]
}
