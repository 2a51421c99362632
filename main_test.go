package main

import (
	"net"
	"testing"
)

func TestIPInRange(t *testing.T) {
	start := net.ParseIP("192.168.0.10").To4()
	end := net.ParseIP("192.168.0.50").To4()

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"start of pool", "192.168.0.10", true},
		{"end of pool", "192.168.0.50", true},
		{"inside pool", "192.168.0.30", true},
		{"below pool", "192.168.0.9", false},
		{"above pool", "192.168.0.51", false},
		{"different subnet", "10.0.0.30", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ipInRange(net.ParseIP(tt.ip), start, end); got != tt.want {
				t.Errorf("ipInRange(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if ipInRange(nil, start, end) {
		t.Error("ipInRange(nil) = true, want false")
	}
}

func TestNextFreeIP(t *testing.T) {
	start := net.ParseIP("192.168.0.10").To4()
	end := net.ParseIP("192.168.0.12").To4()

	assigned := map[string]bool{"192.168.0.10": true}

	ip, err := nextFreeIP(start, end, assigned)
	if err != nil {
		t.Fatalf("nextFreeIP() error = %v", err)
	}
	if ip.String() != "192.168.0.11" {
		t.Errorf("nextFreeIP() = %s, want 192.168.0.11", ip)
	}

	ip, err = nextFreeIP(start, end, assigned)
	if err != nil {
		t.Fatalf("nextFreeIP() error = %v", err)
	}
	if ip.String() != "192.168.0.12" {
		t.Errorf("nextFreeIP() = %s, want 192.168.0.12", ip)
	}

	if _, err := nextFreeIP(start, end, assigned); err == nil {
		t.Error("nextFreeIP() on an exhausted pool succeeded, want error")
	}
}
