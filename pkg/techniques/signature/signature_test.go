package signature

import (
	"testing"

	"github.com/redpill/redpill/pkg/platform"
	"github.com/redpill/redpill/pkg/technique"
)

func bareMetal() *platform.Fake {
	return &platform.Fake{
		Vendor:   "GenuineIntel",
		Brand:    "Intel(R) Core(TM) i7-9700K CPU @ 3.60GHz",
		Logical:  8,
		Physical: 8,
	}
}

func xenGuest() *platform.Fake {
	return &platform.Fake{
		Vendor:     XenVendorID,
		Brand:      "Intel(R) Xeon(R) CPU E5-2670 0 @ 2.60GHz",
		Hypervisor: true,
		Logical:    2,
		Physical:   1,
	}
}

func TestVMID(t *testing.T) {
	cases := []struct {
		name   string
		vendor string
		want   technique.Outcome
	}{
		{"xen", XenVendorID, technique.OutcomeDetected},
		{"kvm", "KVMKVMKVM", technique.OutcomeDetected},
		{"vmware", "VMwareVMware", technique.OutcomeDetected},
		{"hyperv", "Microsoft Hv", technique.OutcomeDetected},
		{"intel", "GenuineIntel", technique.OutcomeNotDetected},
		{"amd", "AuthenticAMD", technique.OutcomeNotDetected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check := &VMID{Platform: &platform.Fake{Vendor: tc.vendor}}
			if got := check.Execute().Outcome; got != tc.want {
				t.Errorf("vendor %q: got %v, want %v", tc.vendor, got, tc.want)
			}
		})
	}
}

func TestVMIDUnavailableVendor(t *testing.T) {
	check := &VMID{Platform: &platform.Fake{}}
	result := check.Execute()
	if result.Outcome != technique.OutcomeFailed {
		t.Errorf("empty vendor should fail, got %v", result.Outcome)
	}
	if result.Err == nil {
		t.Error("failed result should carry a reason")
	}
}

func TestCPUBrand(t *testing.T) {
	detect := &CPUBrand{Platform: &platform.Fake{Brand: "QEMU Virtual CPU version 2.5+"}}
	if got := detect.Execute().Outcome; got != technique.OutcomeDetected {
		t.Errorf("QEMU brand: got %v", got)
	}

	clean := &CPUBrand{Platform: bareMetal()}
	if got := clean.Execute().Outcome; got != technique.OutcomeNotDetected {
		t.Errorf("bare metal brand: got %v", got)
	}

	missing := &CPUBrand{Platform: &platform.Fake{}}
	if got := missing.Execute().Outcome; got != technique.OutcomeFailed {
		t.Errorf("missing brand: got %v", got)
	}
}

func TestHypervisorBit(t *testing.T) {
	on := &HypervisorBit{Platform: xenGuest()}
	if got := on.Execute().Outcome; got != technique.OutcomeDetected {
		t.Errorf("hypervisor bit set: got %v", got)
	}

	off := &HypervisorBit{Platform: bareMetal()}
	if got := off.Execute().Outcome; got != technique.OutcomeNotDetected {
		t.Errorf("hypervisor bit clear: got %v", got)
	}
}

func TestThreadCount(t *testing.T) {
	single := &ThreadCount{Platform: &platform.Fake{Logical: 1}}
	if got := single.Execute().Outcome; got != technique.OutcomeDetected {
		t.Errorf("single vCPU: got %v", got)
	}

	multi := &ThreadCount{Platform: bareMetal()}
	if got := multi.Execute().Outcome; got != technique.OutcomeNotDetected {
		t.Errorf("8 cores: got %v", got)
	}

	broken := &ThreadCount{Platform: &platform.Fake{Logical: 0}}
	if got := broken.Execute().Outcome; got != technique.OutcomeFailed {
		t.Errorf("unknown topology: got %v", got)
	}
}

func TestPackRegistered(t *testing.T) {
	for _, name := range []string{"vmid", "cpu_brand", "hypervisor_bit", "thread_count"} {
		if !technique.DefaultRegistry.IsRegistered(name) {
			t.Errorf("technique %q not registered on import", name)
		}
	}
}
