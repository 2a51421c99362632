package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// dbOperation represents a function to be executed on the database
type dbOperation func(*IPDB)

// IPDB persists the IP address assigned to each VM so that a virtual BMC
// keeps a stable address across restarts. Keyed by VM BIOS UUID.
type IPDB struct {
	Assignments map[string]string `json:"assignments"` // VM UUID -> IP address
	path        string            `json:"-"`
	opChan      chan dbOperation  `json:"-"` // Channel for serializing operations
	done        chan struct{}     `json:"-"`
}

// NewIPDB creates a new IP database, loading any existing assignments
func NewIPDB(dbPath string) (*IPDB, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	db := &IPDB{
		Assignments: make(map[string]string),
		path:        dbPath,
		opChan:      make(chan dbOperation),
		done:        make(chan struct{}),
	}

	if _, err := os.Stat(dbPath); err == nil {
		data, err := os.ReadFile(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read database: %v", err)
		}
		if err := json.Unmarshal(data, db); err != nil {
			return nil, fmt.Errorf("failed to parse database: %v", err)
		}
	}

	go db.handleOperations()

	return db, nil
}

// save writes the database to disk
func (db *IPDB) save() error {
	data, err := json.MarshalIndent(db, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.path, data, 0644)
}

// handleOperations processes database operations sequentially
func (db *IPDB) handleOperations() {
	for {
		select {
		case op := <-db.opChan:
			op(db)
		case <-db.done:
			return
		}
	}
}

// Close shuts down the database operation handler
func (db *IPDB) Close() {
	close(db.done)
}

// AssignIP records the IP address assigned to a VM
func (db *IPDB) AssignIP(vmUUID, ip string) error {
	response := make(chan error)
	db.opChan <- func(db *IPDB) {
		db.Assignments[vmUUID] = ip
		response <- db.save()
	}
	return <-response
}

// GetIP returns the IP address assigned to a VM, if any
func (db *IPDB) GetIP(vmUUID string) (string, bool) {
	type result struct {
		ip     string
		exists bool
	}
	response := make(chan result)
	db.opChan <- func(db *IPDB) {
		ip, exists := db.Assignments[vmUUID]
		response <- result{ip, exists}
	}
	r := <-response
	return r.ip, r.exists
}

// AssignedIPs returns the set of all assigned IPs
func (db *IPDB) AssignedIPs() map[string]bool {
	response := make(chan map[string]bool)
	db.opChan <- func(db *IPDB) {
		ips := make(map[string]bool)
		for _, ip := range db.Assignments {
			ips[ip] = true
		}
		response <- ips
	}
	return <-response
}

// Cleanup removes assignments for VMs that no longer exist
func (db *IPDB) Cleanup(existing map[string]bool) error {
	response := make(chan error)
	db.opChan <- func(db *IPDB) {
		for uuid := range db.Assignments {
			if !existing[uuid] {
				delete(db.Assignments, uuid)
			}
		}
		response <- db.save()
	}
	return <-response
}
