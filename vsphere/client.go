package vsphere

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// firmwareVersionKey is the extra-config key a VM uses to advertise the
// firmware version string its virtual BMC should report.
const firmwareVersionKey = "guestinfo.bmc.version"

// Client represents a vSphere client
type Client struct {
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

// NewClient creates a new vSphere client
func NewClient(ctx context.Context, vcenterIP, username, password, datacenter string) (*Client, error) {
	u, err := url.Parse(fmt.Sprintf("https://%s/sdk", vcenterIP))
	if err != nil {
		return nil, fmt.Errorf("failed to parse vCenter URL: %v", err)
	}
	u.User = url.UserPassword(username, password)

	client, err := govmomi.NewClient(ctx, u, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create vSphere client: %v", err)
	}

	finder := find.NewFinder(client.Client, true)
	dc, err := finder.Datacenter(ctx, datacenter)
	if err != nil {
		return nil, fmt.Errorf("failed to find datacenter: %v", err)
	}
	finder.SetDatacenter(dc)

	return &Client{
		client:     client,
		finder:     finder,
		datacenter: dc,
	}, nil
}

// GetVMs returns all VMs in the specified folder or datacenter
func (c *Client) GetVMs(ctx context.Context, folderPath string) ([]*object.VirtualMachine, error) {
	var vms []*object.VirtualMachine
	var err error

	if folderPath != "" {
		folder, err := c.finder.Folder(ctx, folderPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find folder: %v", err)
		}
		vms, err = c.finder.VirtualMachineList(ctx, folder.InventoryPath+"/*")
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %v", err)
		}
	} else {
		vms, err = c.finder.VirtualMachineList(ctx, "*")
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %v", err)
		}
	}

	return vms, nil
}

// GetVMPowerState returns the power state of a VM
func (c *Client) GetVMPowerState(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	var o mo.VirtualMachine
	err := vm.Properties(ctx, vm.Reference(), []string{"runtime.powerState"}, &o)
	if err != nil {
		return "", fmt.Errorf("failed to get VM properties: %v", err)
	}
	return string(o.Runtime.PowerState), nil
}

// GetVMUUID returns the BIOS UUID of a VM in RFC 4122 textual form
func (c *Client) GetVMUUID(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	var o mo.VirtualMachine
	err := vm.Properties(ctx, vm.Reference(), []string{"config.uuid"}, &o)
	if err != nil {
		return "", fmt.Errorf("failed to get VM properties: %v", err)
	}
	if o.Config == nil || o.Config.Uuid == "" {
		return "", fmt.Errorf("VM has no BIOS UUID")
	}
	return o.Config.Uuid, nil
}

// GetFirmwareVersion returns the firmware version string advertised by a VM
// through its guestinfo extra-config
func (c *Client) GetFirmwareVersion(ctx context.Context, vm *object.VirtualMachine) (string, error) {
	var o mo.VirtualMachine
	err := vm.Properties(ctx, vm.Reference(), []string{"config.extraConfig"}, &o)
	if err != nil {
		return "", fmt.Errorf("failed to get VM extra config: %v", err)
	}

	if o.Config != nil {
		for _, opt := range o.Config.ExtraConfig {
			ov, ok := opt.(*types.OptionValue)
			if !ok || ov.Key != firmwareVersionKey {
				continue
			}
			if s, ok := ov.Value.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("%s is not set on the VM", firmwareVersionKey)
}

// PowerOnVM powers on a VM
func (c *Client) PowerOnVM(ctx context.Context, vm *object.VirtualMachine) error {
	task, err := vm.PowerOn(ctx)
	if err != nil {
		return fmt.Errorf("failed to power on VM: %v", err)
	}
	return task.Wait(ctx)
}

// PowerOffVM powers off a VM
func (c *Client) PowerOffVM(ctx context.Context, vm *object.VirtualMachine) error {
	task, err := vm.PowerOff(ctx)
	if err != nil {
		return fmt.Errorf("failed to power off VM: %v", err)
	}
	return task.Wait(ctx)
}

// ResetVM hard-resets a VM
func (c *Client) ResetVM(ctx context.Context, vm *object.VirtualMachine) error {
	task, err := vm.Reset(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset VM: %v", err)
	}
	return task.Wait(ctx)
}
