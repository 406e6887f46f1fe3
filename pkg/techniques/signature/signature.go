// Package signature provides signature-based detection techniques:
// CPU identification strings and platform structures that hypervisors
// expose or fail to mask. Techniques self-register with the default
// registry on import.
package signature

import (
	"log/slog"
	"strings"

	"github.com/redpill/redpill/pkg/platform"
	"github.com/redpill/redpill/pkg/technique"
)

func init() {
	register(
		&VMID{},
		&CPUBrand{},
		&HypervisorBit{},
		&ThreadCount{},
	)
}

// register adds techniques to the default registry. A rejected
// registration is logged and skipped; it never aborts startup.
func register(techniques ...technique.Technique) {
	for _, t := range techniques {
		if err := technique.Register(t); err != nil {
			slog.Warn("failed to register technique",
				slog.String("name", t.Name()),
				slog.String("error", err.Error()))
		}
	}
}

// resolve falls back to the host provider when no fake was injected.
func resolve(p platform.Provider) platform.Provider {
	if p != nil {
		return p
	}
	return platform.Host()
}

// XenVendorID is the manufacturer ID Xen reports at CPUID leaf 0.
const XenVendorID = "XenVMMXenVMM"

// hypervisorVendors maps CPUID leaf-0 manufacturer IDs to the
// hypervisor that reports them.
var hypervisorVendors = map[string]string{
	XenVendorID:    "Xen",
	"KVMKVMKVM":    "KVM",
	"TCGTCGTCGTCG": "QEMU TCG",
	"VMwareVMware": "VMware",
	"Microsoft Hv": "Hyper-V",
	"VBoxVBoxVBox": "VirtualBox",
	"bhyve bhyve ": "bhyve",
	"prl hyperv  ": "Parallels",
	" lrpepyh vr ": "Parallels", // byte-swapped legacy form
	"ACRNACRNACRN": "ACRN",
}

// brandMarkers are substrings that only appear in virtualized brand
// strings.
var brandMarkers = []string{
	"kvm",
	"qemu",
	"xen",
	"vmware",
	"virtualbox",
	"virtual cpu",
	"hyper-v",
}

// =============================================================================
// VMID
// =============================================================================

// VMID checks the CPUID manufacturer ID at leaf 0 against known
// hypervisor vendor IDs.
type VMID struct {
	Platform platform.Provider
}

// Name returns the technique identifier.
func (t *VMID) Name() string { return "vmid" }

// Description returns the technique description.
func (t *VMID) Description() string {
	return "Check CPUID output of manufacturer ID for known VMs/hypervisors at leaf 0"
}

// Execute runs the check.
func (t *VMID) Execute() technique.Result {
	vendor := resolve(t.Platform).VendorString()
	if vendor == "" {
		return technique.Failuref("vmid: vendor string unavailable")
	}
	if _, ok := hypervisorVendors[vendor]; ok {
		return technique.Detected()
	}
	return technique.NotDetected()
}

// =============================================================================
// CPU BRAND
// =============================================================================

// CPUBrand scans the processor brand string for hypervisor markers.
type CPUBrand struct {
	Platform platform.Provider
}

// Name returns the technique identifier.
func (t *CPUBrand) Name() string { return "cpu_brand" }

// Description returns the technique description.
func (t *CPUBrand) Description() string {
	return "Scan the CPU brand string for hypervisor product markers"
}

// Execute runs the check.
func (t *CPUBrand) Execute() technique.Result {
	brand := resolve(t.Platform).BrandString()
	if brand == "" {
		return technique.Failuref("cpu_brand: brand string unavailable")
	}
	lower := strings.ToLower(brand)
	for _, marker := range brandMarkers {
		if strings.Contains(lower, marker) {
			return technique.Detected()
		}
	}
	return technique.NotDetected()
}

// =============================================================================
// HYPERVISOR BIT
// =============================================================================

// HypervisorBit checks the CPUID leaf-1 ECX hypervisor-present bit.
// Hypervisors set it to advertise paravirtual interfaces; bare metal
// never does.
type HypervisorBit struct {
	Platform platform.Provider
}

// Name returns the technique identifier.
func (t *HypervisorBit) Name() string { return "hypervisor_bit" }

// Description returns the technique description.
func (t *HypervisorBit) Description() string {
	return "Check the CPUID leaf 1 ECX bit 31 hypervisor-present flag"
}

// Execute runs the check.
func (t *HypervisorBit) Execute() technique.Result {
	if resolve(t.Platform).HypervisorPresent() {
		return technique.Detected()
	}
	return technique.NotDetected()
}

// =============================================================================
// THREAD COUNT
// =============================================================================

// ThreadCount flags implausible core topologies. A single logical core
// is the classic default for analysis sandboxes; physical x86 hardware
// has shipped multi-core for two decades.
type ThreadCount struct {
	Platform platform.Provider
}

// Name returns the technique identifier.
func (t *ThreadCount) Name() string { return "thread_count" }

// Description returns the technique description.
func (t *ThreadCount) Description() string {
	return "Flag implausibly low logical core counts typical of VM defaults"
}

// Execute runs the check.
func (t *ThreadCount) Execute() technique.Result {
	logical := resolve(t.Platform).LogicalCores()
	if logical <= 0 {
		return technique.Failuref("thread_count: core topology unavailable")
	}
	if logical == 1 {
		return technique.Detected()
	}
	return technique.NotDetected()
}
