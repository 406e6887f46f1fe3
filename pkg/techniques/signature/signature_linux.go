package signature

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/redpill/redpill/pkg/technique"
)

// Linux-only techniques. Gating them at build level keeps inapplicable
// checks out of the registry entirely rather than reporting spurious
// failures on other platforms.
func init() {
	register(
		&XenSysfs{},
		&XenProc{},
		&DMIVendor{},
	)
}

// dmiMarkers are substrings that appear in DMI vendor and product
// strings written by hypervisor firmware.
var dmiMarkers = []string{
	"xen",
	"qemu",
	"kvm",
	"vmware",
	"virtualbox",
	"innotek",
	"bochs",
	"parallels",
	"virtual machine",
}

// =============================================================================
// XEN SYSFS
// =============================================================================

// XenSysfs reads /sys/hypervisor/type, which the kernel populates when
// booted as a Xen guest.
type XenSysfs struct {
	// Root overrides the filesystem root for tests.
	Root string
}

// Name returns the technique identifier.
func (t *XenSysfs) Name() string { return "xen_sysfs" }

// Description returns the technique description.
func (t *XenSysfs) Description() string {
	return "Read /sys/hypervisor/type for the Xen guest marker"
}

// Execute runs the check.
func (t *XenSysfs) Execute() technique.Result {
	data, err := os.ReadFile(t.path("sys/hypervisor/type"))
	if os.IsNotExist(err) {
		// Bare metal kernels do not create the file.
		return technique.NotDetected()
	}
	if err != nil {
		return technique.Failuref("xen_sysfs: %v", err)
	}
	if strings.TrimSpace(string(data)) == "xen" {
		return technique.Detected()
	}
	return technique.NotDetected()
}

func (t *XenSysfs) path(rel string) string {
	return filepath.Join(t.root(), rel)
}

func (t *XenSysfs) root() string {
	if t.Root != "" {
		return t.Root
	}
	return "/"
}

// =============================================================================
// XEN PROC
// =============================================================================

// XenProc checks for the /proc/xen directory exposed to Xen guests by
// the xenfs pseudo-filesystem.
type XenProc struct {
	Root string
}

// Name returns the technique identifier.
func (t *XenProc) Name() string { return "xen_proc" }

// Description returns the technique description.
func (t *XenProc) Description() string {
	return "Check for the /proc/xen directory exposed to Xen guests"
}

// Execute runs the check.
func (t *XenProc) Execute() technique.Result {
	root := t.Root
	if root == "" {
		root = "/"
	}
	info, err := os.Stat(filepath.Join(root, "proc/xen"))
	if os.IsNotExist(err) {
		return technique.NotDetected()
	}
	if err != nil {
		return technique.Failuref("xen_proc: %v", err)
	}
	if info.IsDir() {
		return technique.Detected()
	}
	return technique.NotDetected()
}

// =============================================================================
// DMI VENDOR
// =============================================================================

// DMIVendor scans SMBIOS identity strings under /sys/class/dmi/id for
// hypervisor firmware markers.
type DMIVendor struct {
	Root string
}

// Name returns the technique identifier.
func (t *DMIVendor) Name() string { return "dmi_vendor" }

// Description returns the technique description.
func (t *DMIVendor) Description() string {
	return "Scan SMBIOS vendor and product strings for hypervisor firmware markers"
}

// Execute runs the check.
func (t *DMIVendor) Execute() technique.Result {
	root := t.Root
	if root == "" {
		root = "/"
	}

	files := []string{
		"sys/class/dmi/id/sys_vendor",
		"sys/class/dmi/id/product_name",
		"sys/class/dmi/id/bios_vendor",
	}

	readable := 0
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		readable++
		value := strings.ToLower(strings.TrimSpace(string(data)))
		for _, marker := range dmiMarkers {
			if strings.Contains(value, marker) {
				return technique.Detected()
			}
		}
	}

	if readable == 0 {
		return technique.Failuref("dmi_vendor: no DMI identity files readable")
	}
	return technique.NotDetected()
}
