// Package devid assembles the Get Device ID response record from the
// parsed firmware revision, the static identity fields and the live
// controller readiness flag.
package devid

// IPMI specification version 2.0, encoded per the Get Device ID command.
const protocolVersion = 2

// Bit 7 of firmware byte 0: 0 = normal operation, 1 = firmware update or
// self-initialization in progress.
const unavailableBit = 1 << 7

// Record is the fixed 15-byte Get Device ID response body.
type Record struct {
	DeviceID          uint8
	DeviceRevision    uint8
	Firmware          [2]uint8 // [0] bits 0-6 major BCD, bit 7 unavailable; [1] minor BCD
	IPMIVersion       uint8
	AdditionalSupport uint8
	ManufacturerID    [3]uint8 // little-endian
	ProductID         [2]uint8 // little-endian
	Aux               [4]uint8
}

// Bytes packs the record in wire order.
func (r Record) Bytes() []byte {
	b := make([]byte, 0, 15)
	b = append(b, r.DeviceID, r.DeviceRevision, r.Firmware[0], r.Firmware[1],
		r.IPMIVersion, r.AdditionalSupport)
	b = append(b, r.ManufacturerID[:]...)
	b = append(b, r.ProductID[:]...)
	b = append(b, r.Aux[:]...)
	return b
}

// Identity holds the static identity fields read from the device identity
// sidecar file. All fields default to zero when absent.
type Identity struct {
	DeviceID          uint8
	DeviceRevision    uint8
	AdditionalSupport uint8
	ManufacturerID    uint32
	ProductID         uint16
	Aux               uint32
}
