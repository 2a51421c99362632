package bmc

import (
	goipmi "github.com/ooneko/goipmi"
)

// Response bodies for the App commands the goipmi package has no types
// for. Fields are laid out in wire order; multi-byte ids are stored as
// byte arrays so the little-endian struct marshaling cannot reorder them.

// deviceIDResponse is the Get Device ID response, section 20.1.
type deviceIDResponse struct {
	goipmi.CompletionCode
	DeviceID          uint8
	DeviceRevision    uint8
	Firmware          [2]uint8
	IPMIVersion       uint8
	AdditionalSupport uint8
	ManufacturerID    [3]uint8
	ProductID         [2]uint8
	Aux               [4]uint8
}

// guidResponse carries the 16 reversed GUID bytes for Get Device GUID and
// Get System GUID.
type guidResponse struct {
	goipmi.CompletionCode
	GUID [16]uint8
}

// selfTestResponse is the Get Self Test Results response, section 20.4.
type selfTestResponse struct {
	goipmi.CompletionCode
	Result uint8
	Detail uint8
}

// btCapabilitiesResponse is the Get BT Interface Capabilities response,
// section 22.10.
type btCapabilitiesResponse struct {
	goipmi.CompletionCode
	OutstandingRequests uint8
	InputBufferSize     uint8
	OutputBufferSize    uint8
	BMCRequestTimeout   uint8
	Retries             uint8
}
