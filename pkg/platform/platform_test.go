package platform

import "testing"

func TestHostProvider(t *testing.T) {
	p := Host()
	if p == nil {
		t.Fatal("Host() returned nil")
	}
	if p.LogicalCores() <= 0 {
		t.Errorf("LogicalCores() = %d", p.LogicalCores())
	}
	// Vendor and brand may legitimately be empty on exotic
	// architectures; the calls must simply not panic.
	_ = p.VendorString()
	_ = p.BrandString()
	_ = p.HypervisorPresent()
	_ = p.PhysicalCores()
	if p.HasFeature("definitely_not_a_feature") {
		t.Error("unknown feature name should report false")
	}
}

func TestFake(t *testing.T) {
	f := &Fake{
		Vendor:     "XenVMMXenVMM",
		Brand:      "virtual cpu",
		Hypervisor: true,
		Logical:    2,
		Physical:   1,
		Features:   map[string]bool{"sse2": true},
	}

	if f.VendorString() != "XenVMMXenVMM" {
		t.Errorf("VendorString() = %q", f.VendorString())
	}
	if f.BrandString() != "virtual cpu" {
		t.Errorf("BrandString() = %q", f.BrandString())
	}
	if !f.HypervisorPresent() {
		t.Error("HypervisorPresent() = false")
	}
	if f.LogicalCores() != 2 || f.PhysicalCores() != 1 {
		t.Errorf("cores = %d/%d", f.LogicalCores(), f.PhysicalCores())
	}
	if !f.HasFeature("sse2") || f.HasFeature("avx512") {
		t.Error("feature lookup mismatch")
	}
}
