package bmc

import "context"

// Adapters exposing the machine as the narrow sources the record builder
// consumes.

type machineVersionSource struct {
	m Machine
}

func (s machineVersionSource) ActiveVersion(ctx context.Context) (string, error) {
	return s.m.FirmwareVersion(ctx)
}

type machineStateSource struct {
	m Machine
}

func (s machineStateSource) Ready(ctx context.Context) (bool, error) {
	return s.m.Ready(ctx)
}
