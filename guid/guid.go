// Package guid converts RFC 4122 textual UUIDs into the 16-byte wire form
// returned by the Get Device GUID and Get System GUID commands.
package guid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the length of a GUID response in bytes.
const Size = 16

// ErrInvalidLength is returned when the hyphen-stripped text is not exactly
// 32 hex characters.
var ErrInvalidLength = errors.New("invalid GUID length")

// ToWireFormat strips the hyphens from text and emits the byte pairs in
// reverse order: the last textual pair becomes wire byte 0.
//
// For 61a39523-78f2-11e5-9862-e6402cfc3223 the wire form is
// 0x2332fc2c40e66298e511f2782395a361. Note the result does not follow the
// GUID field layout of IPMI 2.0 section 20.8; clients depend on the plain
// reversal, so it is kept as is (see ipmitool bug 501).
func ToWireFormat(text string) ([]byte, error) {
	stripped := strings.ReplaceAll(text, "-", "")
	if len(stripped) != 2*Size {
		return nil, ErrInvalidLength
	}

	raw, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("bad GUID text %q: %v", text, err)
	}

	wire := make([]byte, Size)
	for i, b := range raw {
		wire[Size-1-i] = b
	}
	return wire, nil
}
