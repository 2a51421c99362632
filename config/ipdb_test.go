package config

import (
	"path/filepath"
	"testing"
)

func TestIPDB_AssignAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipdb.json")

	db, err := NewIPDB(path)
	if err != nil {
		t.Fatalf("NewIPDB() error = %v", err)
	}
	defer db.Close()

	if _, ok := db.GetIP("422c7d2e-0000-0000-0000-000000000001"); ok {
		t.Error("GetIP() on empty database reported an assignment")
	}

	if err := db.AssignIP("422c7d2e-0000-0000-0000-000000000001", "192.168.0.10"); err != nil {
		t.Fatalf("AssignIP() error = %v", err)
	}

	ip, ok := db.GetIP("422c7d2e-0000-0000-0000-000000000001")
	if !ok || ip != "192.168.0.10" {
		t.Errorf("GetIP() = %q, %v, want 192.168.0.10, true", ip, ok)
	}

	ips := db.AssignedIPs()
	if !ips["192.168.0.10"] {
		t.Error("AssignedIPs() missing assigned address")
	}
}

func TestIPDB_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipdb.json")

	db, err := NewIPDB(path)
	if err != nil {
		t.Fatalf("NewIPDB() error = %v", err)
	}
	if err := db.AssignIP("uuid-a", "192.168.0.11"); err != nil {
		t.Fatalf("AssignIP() error = %v", err)
	}
	db.Close()

	reopened, err := NewIPDB(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	ip, ok := reopened.GetIP("uuid-a")
	if !ok || ip != "192.168.0.11" {
		t.Errorf("GetIP() after reopen = %q, %v, want 192.168.0.11, true", ip, ok)
	}
}

func TestIPDB_Cleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipdb.json")

	db, err := NewIPDB(path)
	if err != nil {
		t.Fatalf("NewIPDB() error = %v", err)
	}
	defer db.Close()

	db.AssignIP("uuid-a", "192.168.0.11")
	db.AssignIP("uuid-b", "192.168.0.12")

	if err := db.Cleanup(map[string]bool{"uuid-a": true}); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if _, ok := db.GetIP("uuid-b"); ok {
		t.Error("Cleanup() kept an assignment for a removed VM")
	}
	if _, ok := db.GetIP("uuid-a"); !ok {
		t.Error("Cleanup() dropped an assignment for an existing VM")
	}
}
