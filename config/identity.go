package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vbmc-identity/devid"
)

// IdentityFile reads the static device identity fields from a JSON sidecar
// file. Every field is optional and defaults to zero; a structurally
// invalid file is reported as an error and the caller degrades to zero
// defaults.
type IdentityFile struct {
	path string
}

// NewIdentityFile returns a source backed by the sidecar at path.
func NewIdentityFile(path string) *IdentityFile {
	return &IdentityFile{path: path}
}

// DeviceIdentity implements devid.IdentitySource.
func (f *IdentityFile) DeviceIdentity() (devid.Identity, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return devid.Identity{}, fmt.Errorf("failed to read device identity file: %v", err)
	}

	var raw struct {
		ID             uint8  `json:"id"`
		Revision       uint8  `json:"revision"`
		AddnDevSupport uint8  `json:"addn_dev_support"`
		ManufID        uint32 `json:"manuf_id"`
		ProdID         uint16 `json:"prod_id"`
		Aux            uint32 `json:"aux"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return devid.Identity{}, fmt.Errorf("failed to parse device identity file: %v", err)
	}

	return devid.Identity{
		DeviceID:          raw.ID,
		DeviceRevision:    raw.Revision,
		AdditionalSupport: raw.AddnDevSupport,
		ManufacturerID:    raw.ManufID,
		ProductID:         raw.ProdID,
		Aux:               raw.Aux,
	}, nil
}
