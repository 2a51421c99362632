package guid

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestToWireFormat(t *testing.T) {
	const text = "61a39523-78f2-11e5-9862-e6402cfc3223"

	got, err := ToWireFormat(text)
	if err != nil {
		t.Fatalf("ToWireFormat(%q) error = %v", text, err)
	}

	want := []byte{
		0x23, 0x32, 0xfc, 0x2c, 0x40, 0xe6, 0x62, 0x98,
		0xe5, 0x11, 0xf2, 0x78, 0x23, 0x95, 0xa3, 0x61,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ToWireFormat(%q) = % x, want % x", text, got, want)
	}

	// The wire form is the canonical byte order reversed.
	u := uuid.MustParse(text)
	for i := range got {
		if got[i] != u[Size-1-i] {
			t.Errorf("wire byte %d = %#02x, want canonical byte %d (%#02x)", i, got[i], Size-1-i, u[Size-1-i])
		}
	}
}

func TestToWireFormat_CaseInsensitive(t *testing.T) {
	lower, err := ToWireFormat("61a39523-78f2-11e5-9862-e6402cfc3223")
	if err != nil {
		t.Fatalf("lowercase error = %v", err)
	}
	upper, err := ToWireFormat("61A39523-78F2-11E5-9862-E6402CFC3223")
	if err != nil {
		t.Fatalf("uppercase error = %v", err)
	}
	if !bytes.Equal(lower, upper) {
		t.Errorf("case sensitivity: % x != % x", lower, upper)
	}
}

func TestToWireFormat_HyphenPlacementIgnored(t *testing.T) {
	// Only the stripped length matters, not where the hyphens sit.
	got, err := ToWireFormat("61a3952378f211e59862e6402cfc3223")
	if err != nil {
		t.Fatalf("unhyphenated error = %v", err)
	}
	if got[0] != 0x23 || got[Size-1] != 0x61 {
		t.Errorf("unexpected boundary bytes: % x", got)
	}
}

func TestToWireFormat_InvalidLength(t *testing.T) {
	tests := []string{
		"",
		"61a39523",
		"61a39523-78f2-11e5-9862-e6402cfc32",     // 30 hex chars
		"61a39523-78f2-11e5-9862-e6402cfc322344", // 34 hex chars
	}
	for _, text := range tests {
		if _, err := ToWireFormat(text); err != ErrInvalidLength {
			t.Errorf("ToWireFormat(%q) error = %v, want ErrInvalidLength", text, err)
		}
	}
}

func TestToWireFormat_BadHex(t *testing.T) {
	_, err := ToWireFormat("zza39523-78f2-11e5-9862-e6402cfc3223")
	if err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if err == ErrInvalidLength {
		t.Fatal("non-hex input misreported as length error")
	}
}
