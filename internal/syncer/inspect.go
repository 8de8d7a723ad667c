package syncer

import (
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/syntax"
	"github.com/falkyre/relsync/internal/target"
)

// Reading is one target's current marker value.
type Reading struct {
	// Path is the target path as declared in configuration.
	Path string
	// Kind is the target's marker strategy.
	Kind target.Kind
	// Line is the 1-based line the marker sits on.
	Line int
	// Value is the version currently recorded.
	Value string
	// Err is set when the target could not be read or its marker located.
	Err error
}

// Verify re-reads every target and confirms its marker equals expected.
// Unlike Apply, verification never stops early: every disagreeing target is
// collected so the operator sees the full picture in one pass. Structured
// files are also syntax-checked, catching a rewrite that matched the wrong
// span and broke the surrounding document.
func (s *Syncer) Verify(expected string) error {
	var merr *multierror.Error
	for _, tgt := range s.targets {
		path := s.resolve(tgt.Desc.Path)
		data, err := os.ReadFile(path)
		if err != nil {
			merr = multierror.Append(merr, readError(tgt.Desc.Path, err))
			continue
		}
		marker, err := tgt.Find(string(data))
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		if marker.Value != expected {
			merr = multierror.Append(merr,
				errors.VerificationMismatch(tgt.Desc.Path, expected, marker.Value))
		}
		if err := syntax.Check(path, data); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// Current reads every target's marker. It returns the per-target readings,
// the version the targets agree on, and whether they all agree. Any read or
// marker failure counts as disagreement.
func (s *Syncer) Current() ([]Reading, string, bool) {
	if len(s.targets) == 0 {
		return nil, "", false
	}

	readings := make([]Reading, 0, len(s.targets))
	agreed := ""
	agree := true
	for _, tgt := range s.targets {
		r := Reading{Path: tgt.Desc.Path, Kind: tgt.Desc.Kind}
		data, err := os.ReadFile(s.resolve(tgt.Desc.Path))
		if err != nil {
			r.Err = readError(tgt.Desc.Path, err)
			agree = false
		} else if marker, ferr := tgt.Find(string(data)); ferr != nil {
			r.Err = ferr
			agree = false
		} else {
			r.Line = marker.Line
			r.Value = marker.Value
			if agreed == "" {
				agreed = r.Value
			} else if r.Value != agreed {
				agree = false
			}
		}
		readings = append(readings, r)
	}
	if !agree {
		return readings, "", false
	}
	return readings, agreed, true
}
