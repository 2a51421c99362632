package bmc

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"

	goipmi "github.com/ooneko/goipmi"
	"github.com/sirupsen/logrus"

	"github.com/vbmc-identity/devid"
	"github.com/vbmc-identity/guid"
)

// App commands the goipmi package does not name.
const (
	commandGetSelfTestResults = goipmi.Command(0x04)
	commandSetACPIPowerState  = goipmi.Command(0x06)
	commandGetDeviceGUID      = goipmi.Command(0x08)
	commandGetBTCapabilities  = goipmi.Command(0x36)
	commandGetSystemGUID      = goipmi.Command(0x37)
)

// ccResponseError is returned when a queried property cannot be turned
// into a valid response (completion code C.Eh, "cannot return number of
// requested data bytes").
const ccResponseError = goipmi.CompletionCode(0xce)

// Request and response buffers advertised over the BT interface, minus one
// byte for the length field.
const maxRequestSize = 64

// Machine is what the server needs from the virtualization layer.
type Machine interface {
	Name() string
	UUID(ctx context.Context) (string, error)
	FirmwareVersion(ctx context.Context) (string, error)
	Ready(ctx context.Context) (bool, error)
	PoweredOn(ctx context.Context) (bool, error)
	PowerOn(ctx context.Context) error
	PowerOff(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Server answers IPMI identity and chassis queries for one machine.
type Server struct {
	machine  Machine
	builder  *devid.Builder
	sim      *goipmi.Simulator
	sessions *sessionTable
	ip       net.IP
	netmask  net.IP
	nic      string
	log      *logrus.Entry
}

// NewServer wires a server to its machine and identity sidecar. The pool
// address is added to nic before the endpoint binds to it. Handlers are
// registered explicitly when the server starts; nothing registers itself
// at construction time.
func NewServer(machine Machine, identity devid.IdentitySource, ip, netmask net.IP, nic string) *Server {
	log := logrus.WithField("vm", machine.Name())
	return &Server{
		machine:  machine,
		builder:  devid.NewBuilder(machineVersionSource{machine}, identity, machineStateSource{machine}, log),
		sessions: newSessionTable(),
		ip:       ip,
		netmask:  netmask,
		nic:      nic,
		log:      log,
	}
}

// configureIP adds the server's pool address to the network interface.
// Pool addresses are not on any local interface until this runs, so the
// endpoint cannot bind without it. A no-op when the address is already
// present.
func (s *Server) configureIP() error {
	checkCmd := exec.Command("ip", "addr", "show", "dev", s.nic)
	checkOutput, err := checkCmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to check IP configuration on %s: %v - %s",
			s.nic, err, string(checkOutput))
	}

	if strings.Contains(string(checkOutput), s.ip.String()) {
		s.log.Infof("IP %s already configured on interface %s, skipping configuration",
			s.ip, s.nic)
		return nil
	}

	cmd := exec.Command("ip", "addr", "add",
		fmt.Sprintf("%s/%s", s.ip, s.netmask),
		"dev", s.nic)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to configure IP %s on %s: %v - %s",
			s.ip, s.nic, err, string(output))
	}

	s.log.Infof("Configured IP %s with netmask %s on interface %s", s.ip, s.netmask, s.nic)
	return nil
}

// cleanupIP removes the pool address from the network interface.
func (s *Server) cleanupIP() error {
	if s.ip == nil || s.nic == "" {
		return nil
	}

	cmd := exec.Command("ip", "addr", "del",
		fmt.Sprintf("%s/%s", s.ip, s.netmask),
		"dev", s.nic)
	output, err := cmd.CombinedOutput()
	if err != nil {
		s.log.Errorf("Failed to remove IP %s from %s: %v - %s",
			s.ip, s.nic, err, string(output))
		return err
	}

	s.log.Infof("Removed IP %s from interface %s", s.ip, s.nic)
	return nil
}

// Start configures the pool address on the interface and begins serving
// IPMI requests on it.
func (s *Server) Start() error {
	if err := s.configureIP(); err != nil {
		return fmt.Errorf("failed to configure IP: %v", err)
	}

	s.sim = goipmi.NewSimulator(net.UDPAddr{IP: s.ip, Port: 623})
	s.registerHandlers()

	if err := s.sim.Run(); err != nil {
		return fmt.Errorf("failed to start IPMI endpoint: %v", err)
	}
	s.log.Infof("IPMI identity endpoint listening on %s:623", s.ip)
	return nil
}

// Stop shuts the endpoint down and releases its interface address.
func (s *Server) Stop() {
	if s.sim != nil {
		s.sim.Stop()
	}
	s.cleanupIP()
	s.log.Info("IPMI identity endpoint stopped")
}

func (s *Server) registerHandlers() {
	s.sim.SetHandler(goipmi.NetworkFunctionApp, goipmi.CommandGetDeviceID, s.handleGetDeviceID)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, commandGetDeviceGUID, s.handleGetGUID)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, commandGetSystemGUID, s.handleGetGUID)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, commandGetSelfTestResults, s.handleGetSelfTestResults)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, commandSetACPIPowerState, s.handleSetACPIPowerState)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, commandGetBTCapabilities, s.handleGetBTCapabilities)

	s.sim.SetHandler(goipmi.NetworkFunctionApp, goipmi.CommandGetAuthCapabilities, s.handleGetAuthCapabilities)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, goipmi.CommandGetSessionChallenge, s.handleGetSessionChallenge)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, goipmi.CommandActivateSession, s.handleActivateSession)
	s.sim.SetHandler(goipmi.NetworkFunctionApp, goipmi.CommandCloseSession, s.handleCloseSession)

	s.sim.SetHandler(goipmi.NetworkFunctionChassis, goipmi.CommandChassisControl, s.handleChassisControl)
	s.sim.SetHandler(goipmi.NetworkFunctionChassis, goipmi.CommandChassisStatus, s.handleChassisStatus)
}

func (s *Server) handleGetDeviceID(m *goipmi.Message) goipmi.Response {
	s.log.Debug("Handling get device ID command")

	rec := s.builder.Build(context.Background())
	if status, reason := s.builder.Status(); status == devid.StatusDegraded {
		s.log.Warnf("Serving degraded device identity: %v", reason)
	}

	return &deviceIDResponse{
		CompletionCode:    goipmi.CommandCompleted,
		DeviceID:          rec.DeviceID,
		DeviceRevision:    rec.DeviceRevision,
		Firmware:          rec.Firmware,
		IPMIVersion:       rec.IPMIVersion,
		AdditionalSupport: rec.AdditionalSupport,
		ManufacturerID:    rec.ManufacturerID,
		ProductID:         rec.ProductID,
		Aux:               rec.Aux,
	}
}

// handleGetGUID answers both Get Device GUID and Get System GUID; the
// machine exposes a single BIOS UUID.
func (s *Server) handleGetGUID(m *goipmi.Message) goipmi.Response {
	text, err := s.machine.UUID(context.Background())
	if err != nil {
		s.log.Errorf("Failed to read machine UUID: %v", err)
		return goipmi.ErrUnspecified
	}

	wire, err := guid.ToWireFormat(text)
	if err != nil {
		s.log.Errorf("Invalid machine UUID %q: %v", text, err)
		return ccResponseError
	}

	resp := &guidResponse{CompletionCode: goipmi.CommandCompleted}
	copy(resp.GUID[:], wire)
	return resp
}

func (s *Server) handleGetSelfTestResults(m *goipmi.Message) goipmi.Response {
	// 0x56: self test function not implemented in this controller.
	return &selfTestResponse{
		CompletionCode: goipmi.CommandCompleted,
		Result:         0x56,
		Detail:         0x00,
	}
}

func (s *Server) handleSetACPIPowerState(m *goipmi.Message) goipmi.Response {
	s.log.Debug("Set ACPI power state acknowledged and ignored")
	return goipmi.CommandCompleted
}

func (s *Server) handleGetBTCapabilities(m *goipmi.Message) goipmi.Response {
	return &btCapabilitiesResponse{
		CompletionCode:      goipmi.CommandCompleted,
		OutstandingRequests: 1,
		InputBufferSize:     maxRequestSize - 1,
		OutputBufferSize:    maxRequestSize - 1,
		BMCRequestTimeout:   10,
		Retries:             1,
	}
}

func (s *Server) handleChassisControl(m *goipmi.Message) goipmi.Response {
	req := &goipmi.ChassisControlRequest{}
	if err := m.Request(req); err != nil {
		s.log.Errorf("Failed to parse chassis control request: %v", err)
		return goipmi.ErrInvalidCommand
	}

	ctx := context.Background()
	var err error
	switch req.ChassisControl {
	case goipmi.ControlPowerDown:
		s.log.Info("Power down command received")
		err = s.machine.PowerOff(ctx)
	case goipmi.ControlPowerUp:
		s.log.Info("Power up command received")
		err = s.machine.PowerOn(ctx)
	case goipmi.ControlPowerHardReset:
		s.log.Info("Reset command received")
		err = s.machine.Reset(ctx)
	case goipmi.ControlPowerCycle:
		s.log.Info("Power cycle command received")
		if err = s.machine.PowerOff(ctx); err == nil {
			err = s.machine.PowerOn(ctx)
		}
	default:
		s.log.Warnf("Unsupported chassis control command: %v", req.ChassisControl)
		return goipmi.ErrInvalidCommand
	}

	if err != nil {
		s.log.Errorf("Chassis control failed: %v", err)
		return goipmi.ErrUnspecified
	}
	return goipmi.CommandCompleted
}

func (s *Server) handleChassisStatus(m *goipmi.Message) goipmi.Response {
	on, err := s.machine.PoweredOn(context.Background())
	if err != nil {
		s.log.Errorf("Failed to get power state: %v", err)
		return goipmi.ErrUnspecified
	}

	var powerState uint8
	if on {
		powerState = goipmi.SystemPower
	}
	return &goipmi.ChassisStatusResponse{
		CompletionCode: goipmi.CommandCompleted,
		PowerState:     powerState,
	}
}
