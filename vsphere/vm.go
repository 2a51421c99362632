package vsphere

import (
	"context"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"
)

// VM couples a discovered virtual machine with the client used to query
// it, exposing the narrow surface the BMC server needs.
type VM struct {
	client *Client
	vm     *object.VirtualMachine
}

// NewVM wraps a discovered virtual machine
func NewVM(client *Client, vm *object.VirtualMachine) *VM {
	return &VM{client: client, vm: vm}
}

// Name returns the VM inventory name
func (v *VM) Name() string {
	return v.vm.Name()
}

// UUID returns the BIOS UUID in RFC 4122 textual form
func (v *VM) UUID(ctx context.Context) (string, error) {
	return v.client.GetVMUUID(ctx, v.vm)
}

// FirmwareVersion returns the firmware version string the VM advertises
func (v *VM) FirmwareVersion(ctx context.Context) (string, error) {
	return v.client.GetFirmwareVersion(ctx, v.vm)
}

// Ready reports whether the VM is powered on and can be considered a
// controller in normal operation
func (v *VM) Ready(ctx context.Context) (bool, error) {
	state, err := v.client.GetVMPowerState(ctx, v.vm)
	if err != nil {
		return false, err
	}
	return state == string(types.VirtualMachinePowerStatePoweredOn), nil
}

// PoweredOn reports the raw power state for chassis status
func (v *VM) PoweredOn(ctx context.Context) (bool, error) {
	return v.Ready(ctx)
}

// PowerOn powers on the VM
func (v *VM) PowerOn(ctx context.Context) error {
	return v.client.PowerOnVM(ctx, v.vm)
}

// PowerOff powers off the VM
func (v *VM) PowerOff(ctx context.Context) error {
	return v.client.PowerOffVM(ctx, v.vm)
}

// Reset hard-resets the VM
func (v *VM) Reset(ctx context.Context) error {
	return v.client.ResetVM(ctx, v.vm)
}
