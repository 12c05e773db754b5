// Package profile defines the canonical building record and the merge
// machinery that folds the per-source dataset fragments into it.
package profile

import (
	"strings"

	"github.com/rotisserie/eris"
)

// bblWidth is the canonical identifier width: 1-digit borough code,
// 5-digit block, 4-digit lot, all zero-padded.
const bblWidth = 10

// BBL is a canonical Borough-Block-Lot identifier. A valid BBL is always
// exactly ten digits; all dataset joins key on this value.
type BBL string

// ParseBBL canonicalizes a raw identifier. Separators (dashes, slashes,
// spaces) and any other non-digit runes are stripped, and the remaining
// digits are left-padded to the canonical width. Inputs that are empty,
// all zeros, or longer than the canonical width are rejected.
func ParseBBL(raw string) (BBL, error) {
	var b strings.Builder
	b.Grow(bblWidth)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return "", eris.Errorf("profile: no digits in identifier %q", raw)
	}
	if len(digits) > bblWidth {
		return "", eris.Errorf("profile: identifier %q exceeds %d digits", raw, bblWidth)
	}
	if strings.Trim(digits, "0") == "" {
		return "", eris.Errorf("profile: identifier %q is all zeros", raw)
	}

	padded := strings.Repeat("0", bblWidth-len(digits)) + digits
	return BBL(padded), nil
}

// MustBBL parses a BBL and panics on failure. Test helper.
func MustBBL(raw string) BBL {
	b, err := ParseBBL(raw)
	if err != nil {
		panic(err)
	}
	return b
}

// Borough returns the 1-digit borough code segment.
func (b BBL) Borough() string { return string(b)[:1] }

// Block returns the 5-digit block segment.
func (b BBL) Block() string { return string(b)[1:6] }

// Lot returns the 4-digit lot segment.
func (b BBL) Lot() string { return string(b)[6:] }

func (b BBL) String() string { return string(b) }
