// Package scheme defines the version grammar used across relsync: how a
// version string is validated, parsed, and ordered. The grammar is a
// configuration option, not a constant; the default matches calendar
// versions like 2026.02.4.
package scheme

import (
	"fmt"
	"regexp"

	"github.com/falkyre/relsync/internal/errors"
)

// DefaultPattern is the calendar versioning grammar (YYYY.0M.PATCH).
const DefaultPattern = `^\d{4}\.\d{2}\.\d+$`

// Scheme validates version strings against a configured grammar.
type Scheme struct {
	pattern string
	re      *regexp.Regexp
}

// Compile builds a Scheme from the given pattern. An empty pattern selects
// the default grammar. The pattern is wrapped in a non-capturing group and
// anchored as a whole, so neither a partial match nor a top-level
// alternation branch can accept a malformed version.
func Compile(pattern string) (*Scheme, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.NewConfigError(
			fmt.Sprintf("invalid version pattern %q: %v", pattern, err),
			"Fix version.pattern in .relsync.yml",
			"Patterns use Go regular expression syntax",
		)
	}
	return &Scheme{pattern: pattern, re: re}, nil
}

// Default returns the calendar versioning scheme.
func Default() *Scheme {
	s, err := Compile(DefaultPattern)
	if err != nil {
		panic(err) // the default pattern always compiles
	}
	return s
}

// Pattern returns the grammar as configured, without added anchors.
func (s *Scheme) Pattern() string {
	return s.pattern
}

// Validate checks raw against the grammar. It returns a Format error naming
// the rejected string and the expected grammar.
func (s *Scheme) Validate(raw string) error {
	if !s.re.MatchString(raw) {
		return errors.InvalidVersionFormat(raw, s.pattern)
	}
	return nil
}

// Parse validates raw and returns it as a Version. The Version's String
// method returns the input unmodified.
func (s *Scheme) Parse(raw string) (Version, error) {
	if err := s.Validate(raw); err != nil {
		return Version{}, err
	}
	return Version{raw: raw}, nil
}
