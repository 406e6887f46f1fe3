// Package platform provides a read-only view of the executing CPU:
// vendor string, brand string, feature bits, and core topology.
// Techniques depend on the Provider interface so tests can substitute a
// fake; the real implementation is backed by CPUID.
package platform

import (
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Provider is the consumer-side interface for CPU identification.
type Provider interface {
	// VendorString returns the 12-byte manufacturer ID from CPUID
	// leaf 0 (e.g. "GenuineIntel", or "XenVMMXenVMM" under Xen).
	VendorString() string

	// BrandString returns the processor brand string.
	BrandString() string

	// HypervisorPresent reports the CPUID leaf-1 ECX hypervisor bit.
	HypervisorPresent() bool

	// LogicalCores returns the number of logical cores visible to the
	// process.
	LogicalCores() int

	// PhysicalCores returns the number of physical cores, or 0 when
	// the topology cannot be determined.
	PhysicalCores() int

	// HasFeature reports whether the named CPU feature flag is set.
	HasFeature(name string) bool
}

type hostProvider struct{}

func (hostProvider) VendorString() string { return cpuid.CPU.VendorString }

func (hostProvider) BrandString() string { return cpuid.CPU.BrandName }

func (hostProvider) HypervisorPresent() bool { return cpuid.CPU.Has(cpuid.HYPERVISOR) }

func (hostProvider) LogicalCores() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (hostProvider) PhysicalCores() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return 0
}

func (hostProvider) HasFeature(name string) bool {
	id := cpuid.ParseFeature(strings.ToUpper(name))
	if id == cpuid.UNKNOWN {
		return false
	}
	return cpuid.CPU.Has(id)
}

var host Provider = hostProvider{}

// Host returns the provider for the executing machine.
func Host() Provider { return host }
