package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vbmc-identity/bmc"
	"github.com/vbmc-identity/config"
	"github.com/vbmc-identity/vsphere"
)

// incrementIP increments an IP address by 1
func incrementIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] > 0 {
			break
		}
	}
}

// ipInRange reports whether ip falls within [start, end]
func ipInRange(ip, start, end net.IP) bool {
	ip = ip.To4()
	if ip == nil {
		return false
	}
	return bytes.Compare(ip, start) >= 0 && bytes.Compare(ip, end) <= 0
}

// nextFreeIP walks the pool from start to end and returns the first
// address not already assigned
func nextFreeIP(start, end net.IP, assigned map[string]bool) (net.IP, error) {
	ip := make(net.IP, len(start))
	copy(ip, start)
	for {
		if !assigned[ip.String()] {
			assigned[ip.String()] = true
			return ip, nil
		}
		if ip.Equal(end) {
			return nil, fmt.Errorf("IP pool %s-%s exhausted", start, end)
		}
		next := make(net.IP, len(ip))
		copy(next, ip)
		incrementIP(next)
		ip = next
	}
}

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logrus.StandardLogger()
	log.SetLevel(cfg.GetLogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create vSphere client
	vsClient, err := vsphere.NewClient(ctx, cfg.VCenter.IP, cfg.VCenter.User, cfg.VCenter.Password, cfg.VCenter.Datacenter)
	if err != nil {
		log.Fatalf("Failed to create vSphere client: %v", err)
	}

	// Get list of VMs
	vms, err := vsClient.GetVMs(ctx, cfg.VCenter.Folder)
	if err != nil {
		log.Fatalf("Failed to get VMs: %v", err)
	}

	// Device identity sidecar shared by every endpoint
	identity := config.NewIdentityFile(cfg.Identity.Path)

	// Stable VM to IP assignments
	db, err := config.NewIPDB(cfg.Server.IPDBPath)
	if err != nil {
		log.Fatalf("Failed to open IP database: %v", err)
	}
	defer db.Close()

	startIP := net.ParseIP(cfg.Server.IPRange.Start).To4()
	endIP := net.ParseIP(cfg.Server.IPRange.End).To4()
	assigned := db.AssignedIPs()

	var servers []*bmc.Server
	existing := make(map[string]bool)

	for _, vm := range vms {
		machine := vsphere.NewVM(vsClient, vm)

		uuid, err := machine.UUID(ctx)
		if err != nil {
			log.Errorf("Skipping VM %s: %v", machine.Name(), err)
			continue
		}
		existing[uuid] = true

		var ip net.IP
		if s, ok := db.GetIP(uuid); ok {
			ip = net.ParseIP(s).To4()
			// Persisted assignments go stale when the pool shrinks
			if ip != nil && !ipInRange(ip, startIP, endIP) {
				log.Warnf("Persisted IP %s for VM %s is outside the pool %s-%s, reassigning",
					ip, machine.Name(), startIP, endIP)
				ip = nil
			}
		}
		if ip == nil {
			ip, err = nextFreeIP(startIP, endIP, assigned)
			if err != nil {
				log.Fatalf("Failed to assign IP for VM %s: %v", machine.Name(), err)
			}
			if err := db.AssignIP(uuid, ip.String()); err != nil {
				log.Errorf("Failed to persist IP assignment for VM %s: %v", machine.Name(), err)
			}
		}

		server := bmc.NewServer(machine, identity, ip, net.ParseIP(cfg.Server.Network.Netmask), cfg.Server.NIC)
		if err := server.Start(); err != nil {
			log.Errorf("Failed to start IPMI server for VM %s: %v", machine.Name(), err)
			continue
		}
		servers = append(servers, server)

		log.Infof("Started virtual BMC for VM %s on IP %s", machine.Name(), ip)
	}

	// Drop assignments of VMs that are gone
	if err := db.Cleanup(existing); err != nil {
		log.Errorf("Failed to clean up IP database: %v", err)
	}

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Info("Shutting down...")
	cancel()

	for _, server := range servers {
		server.Stop()
	}

	log.Info("Shutdown complete")
}
