package devid

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vbmc-identity/version"
)

// VersionSource returns the currently active firmware version string.
type VersionSource interface {
	ActiveVersion(ctx context.Context) (string, error)
}

// IdentitySource returns the static identity fields.
type IdentitySource interface {
	DeviceIdentity() (Identity, error)
}

// StateSource reports whether the controller is ready for normal operation.
type StateSource interface {
	Ready(ctx context.Context) (bool, error)
}

// Status describes the outcome of the one-time static record computation.
type Status int

const (
	StatusUninitialized Status = iota
	StatusReady
	StatusDegraded
)

// Builder produces Get Device ID records. The static portion of the record
// is computed once, on the first Build, and reused for the process
// lifetime; a failed first computation leaves the builder permanently
// degraded with a well-formed default record (only the protocol version
// field is meaningful). The availability bit is re-read on every Build.
type Builder struct {
	versions VersionSource
	identity IdentitySource
	state    StateSource
	log      *logrus.Entry

	once   sync.Once
	static Record

	mu     sync.Mutex
	status Status
	reason error
}

// NewBuilder wires a builder to its sources. The sources are only
// consulted lazily, from Build.
func NewBuilder(versions VersionSource, identity IdentitySource, state StateSource, log *logrus.Entry) *Builder {
	return &Builder{
		versions: versions,
		identity: identity,
		state:    state,
		log:      log,
	}
}

// Build returns the current Device ID record. The first call computes and
// caches the static fields; every call re-reads the state source and
// patches the availability bit. A state source failure is reported as
// "not ready".
func (b *Builder) Build(ctx context.Context) Record {
	b.once.Do(func() { b.computeStatic(ctx) })

	rec := b.static
	rec.Firmware[0] &^= unavailableBit

	ready, err := b.state.Ready(ctx)
	if err != nil {
		b.log.Warnf("Readiness check failed, reporting unavailable: %v", err)
		ready = false
	}
	if !ready {
		rec.Firmware[0] |= unavailableBit
	}
	return rec
}

// Status reports whether the static record has been computed, and the
// first failure that degraded it, if any.
func (b *Builder) Status() (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status, b.reason
}

func (b *Builder) computeStatic(ctx context.Context) {
	rec := Record{IPMIVersion: protocolVersion}
	status := StatusReady
	var reason error

	text, err := b.versions.ActiveVersion(ctx)
	var rev *version.Revision
	if err == nil {
		rev, err = version.Parse(text)
	}
	if err != nil {
		b.log.Errorf("Firmware revision unavailable: %v", err)
		status, reason = StatusDegraded, err
	} else {
		rec.Firmware[0] = rev.Major &^ unavailableBit

		// The minor byte is clamped on its decimal reading, then
		// re-encoded as BCD.
		minor := rev.Minor
		if minor > 99 {
			minor = 99
		}
		rec.Firmware[1] = minor%10 + (minor/10)*16

		rec.Aux = rev.Aux
	}

	ident, err := b.identity.DeviceIdentity()
	if err != nil {
		b.log.Errorf("Device identity unavailable: %v", err)
		status, reason = StatusDegraded, err
	} else {
		rec.DeviceID = ident.DeviceID
		rec.DeviceRevision = ident.DeviceRevision
		rec.AdditionalSupport = ident.AdditionalSupport

		rec.ManufacturerID[0] = uint8(ident.ManufacturerID)
		rec.ManufacturerID[1] = uint8(ident.ManufacturerID >> 8)
		rec.ManufacturerID[2] = uint8(ident.ManufacturerID >> 16)
		rec.ProductID[0] = uint8(ident.ProductID)
		rec.ProductID[1] = uint8(ident.ProductID >> 8)

		// A non-zero aux value from the sidecar wins over the one
		// derived from the version string. MSB first.
		if ident.Aux != 0 {
			rec.Aux[0] = uint8(ident.Aux >> 24)
			rec.Aux[1] = uint8(ident.Aux >> 16)
			rec.Aux[2] = uint8(ident.Aux >> 8)
			rec.Aux[3] = uint8(ident.Aux)
		}
	}

	b.static = rec

	b.mu.Lock()
	b.status, b.reason = status, reason
	b.mu.Unlock()
}
