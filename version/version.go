package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Revision is a firmware revision decoded into the packed form carried by
// the Get Device ID response. Major and Minor hold the source numerals
// reinterpreted digit-by-digit as BCD (the text "20" becomes the byte 0x20).
// Aux carries either the leading bytes of a git hash or a release/patch
// encoding; byte 3 bit 0 is the dirty flag in both cases.
type Revision struct {
	Major uint8
	Minor uint8
	Aux   [4]uint8
}

// ErrEmpty is returned when nothing remains after the version marker.
var ErrEmpty = errors.New("empty version string")

const (
	maxRelease = 0x999999 // 6 BCD digits
	maxPatch   = 127      // 7 bits

	hashDigits = 6

	auxPatchByte  = 3
	auxPatchShift = 1
	auxDirtyByte  = 3
)

// Parse decodes a free-form firmware version string. Three shapes are
// understood:
//
//	v0.6-19-gf363f61-dirty                        major.minor, git hash
//	v1.99.10-113-g65edf7d-r3-0-g9e4f715-dirty     same, extra tokens skipped
//	v2.2r180608p10-g65edf7d-dirty                 release build with patch level
//
// The release form is selected when the minor token carries an 'r' marker;
// its hash tokens are then ignored. The word "dirty" anywhere in the string
// sets the dirty bit. Numerals are read base-16 so that their decimal
// digits land in BCD nibbles.
func Parse(text string) (*Revision, error) {
	// Drop the leading version marker and anything before it.
	if i := strings.IndexByte(text, 'v'); i >= 0 {
		text = text[i+1:]
	}
	if text == "" {
		return nil, ErrEmpty
	}

	dirty := strings.Contains(text, "dirty")
	tokens := tokenize(text, ".-")

	rev := &Revision{}

	major, err := parseBCD(tokens[0])
	if err != nil {
		return nil, fmt.Errorf("bad major token %q: %v", tokens[0], err)
	}
	rev.Major = uint8(major)

	hasRelease := false
	if len(tokens) > 1 {
		// The minor token may carry release/patchlevel markers.
		minortok := tokenize(tokens[1], "rp")

		minor, err := parseBCD(minortok[0])
		if err != nil {
			return nil, fmt.Errorf("bad minor token %q: %v", tokens[1], err)
		}
		rev.Minor = uint8(minor)

		if len(minortok) > 1 {
			rel, err := parseBCD(minortok[1])
			if err != nil {
				return nil, fmt.Errorf("bad release token %q: %v", minortok[1], err)
			}
			if rel > maxRelease {
				rel = maxRelease
			}
			rev.setAux24(rel)
			hasRelease = true
		}

		if len(minortok) > 2 {
			// Patch level is binary, not BCD, for a wider range.
			pl, err := strconv.ParseUint(minortok[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad patch token %q: %v", minortok[2], err)
			}
			if pl > maxPatch {
				pl = maxPatch
			}
			rev.Aux[auxPatchByte] = uint8(pl) << auxPatchShift
		}
	}

	// Hash info only applies to the non-release forms. Anything starting
	// with a 'g' counts as a hash token; a string with trailing tokens but
	// no hash token simply contributes a zero hash.
	if !hasRelease && len(tokens) > 3 {
		for _, tok := range tokens[3:] {
			if !strings.HasPrefix(tok, "g") {
				continue
			}
			hashstr := tok[1:]
			if len(hashstr) > hashDigits {
				hashstr = hashstr[:hashDigits]
			}
			hash, err := parseBCD(hashstr)
			if err != nil {
				return nil, fmt.Errorf("bad hash token %q: %v", tok, err)
			}
			rev.setAux24(hash)
			break
		}
	}

	if dirty {
		rev.Aux[auxDirtyByte] |= 1
	}

	return rev, nil
}

// setAux24 stores v in the high 24 bits of Aux, MSB first, clearing the
// remaining byte.
func (r *Revision) setAux24(v uint32) {
	r.Aux[0] = uint8(v >> 16)
	r.Aux[1] = uint8(v >> 8)
	r.Aux[2] = uint8(v)
	r.Aux[3] = 0
}

// parseBCD reads a numeral base-16, which maps each decimal digit of the
// source text onto one BCD nibble. Hash tokens use it as plain hex.
func parseBCD(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// tokenize splits s on any of the delimiter characters. Consecutive
// delimiters yield empty tokens; a trailing delimiter does not.
func tokenize(s, delims string) []string {
	var out []string
	for j := 0; j < len(s); {
		k := strings.IndexAny(s[j:], delims)
		if k < 0 {
			k = len(s)
		} else {
			k += j
		}
		out = append(out, s[j:k])
		j = k + 1
	}
	return out
}
