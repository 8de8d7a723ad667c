package scheme

import (
	"strconv"
	"strings"
)

// Version is a validated version string. The zero value is empty; obtain a
// Version through Scheme.Parse.
type Version struct {
	raw string
}

// String returns the version exactly as it was provided.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether the version is the empty zero value.
func (v Version) IsZero() bool {
	return v.raw == ""
}

// Compare orders two versions by dot-separated component: numeric when both
// components parse as integers, bytewise otherwise. It returns -1 when v is
// older than o, 0 when equal, and 1 when newer. A shorter version sorts
// before a longer one with the same leading components (1.2 < 1.2.0).
func (v Version) Compare(o Version) int {
	a := strings.Split(v.raw, ".")
	b := strings.Split(o.raw, ".")
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareComponent(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareComponent(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
