package version

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Revision
	}{
		{
			name: "hash form",
			text: "v0.6-19-gf363f61-dirty",
			want: Revision{Major: 0x00, Minor: 0x06, Aux: [4]uint8{0xf3, 0x63, 0xf6, 0x01}},
		},
		{
			name: "hash form with extra tokens picks first g token",
			text: "v1.99.10-113-g65edf7d-r3-0-g9e4f715-dirty",
			want: Revision{Major: 0x01, Minor: 0x99, Aux: [4]uint8{0x65, 0xed, 0xf7, 0x01}},
		},
		{
			name: "release form ignores hash token",
			text: "v2.2r180608p10-g65edf7d-dirty",
			want: Revision{Major: 0x02, Minor: 0x02, Aux: [4]uint8{0x18, 0x06, 0x08, 0x15}},
		},
		{
			name: "major only",
			text: "v3",
			want: Revision{Major: 0x03},
		},
		{
			name: "no version marker",
			text: "2.4-5-g1a2b3c",
			want: Revision{Major: 0x02, Minor: 0x04, Aux: [4]uint8{0x1a, 0x2b, 0x3c, 0x00}},
		},
		{
			name: "release number clamped to six BCD digits",
			text: "v1.0r99999999",
			want: Revision{Major: 0x01, Minor: 0x00, Aux: [4]uint8{0x99, 0x99, 0x99, 0x00}},
		},
		{
			name: "patch level clamped to 127",
			text: "v1.0r1p200",
			want: Revision{Major: 0x01, Minor: 0x00, Aux: [4]uint8{0x00, 0x00, 0x01, 0xfe}},
		},
		{
			name: "dirty without hash",
			text: "v1.2-dirty",
			want: Revision{Major: 0x01, Minor: 0x02, Aux: [4]uint8{0x00, 0x00, 0x00, 0x01}},
		},
		{
			name: "trailing tokens without hash contribute zero",
			text: "v1.2-3-4",
			want: Revision{Major: 0x01, Minor: 0x02},
		},
		{
			name: "release marker outside minor token is not release form",
			text: "v1.2-r3",
			want: Revision{Major: 0x01, Minor: 0x02},
		},
		{
			name: "long hash truncated to six digits",
			text: "v1.0-1-gabcdef123",
			want: Revision{Major: 0x01, Minor: 0x00, Aux: [4]uint8{0xab, 0xcd, 0xef, 0x00}},
		},
		{
			name: "digits reinterpreted as BCD nibbles",
			text: "v20.15",
			want: Revision{Major: 0x20, Minor: 0x15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "v"} {
		if _, err := Parse(text); err != ErrEmpty {
			t.Errorf("Parse(%q) error = %v, want ErrEmpty", text, err)
		}
	}
}

func TestParse_MalformedTokens(t *testing.T) {
	tests := []string{
		"vx.1",         // bad major
		"v1.zz",        // bad minor
		"v1.2rxyz",     // bad release number
		"v1.2r1pzz",    // bad patch level
		"v1.0-1-1-gzz", // bad hash digits
		"v.",           // empty major token
	}
	for _, text := range tests {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", text)
		}
	}
}
