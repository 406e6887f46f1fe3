package platform

// Fake is a canned Provider for tests and offline analysis.
type Fake struct {
	Vendor     string
	Brand      string
	Hypervisor bool
	Logical    int
	Physical   int
	Features   map[string]bool
}

// VendorString returns the canned vendor ID.
func (f *Fake) VendorString() string { return f.Vendor }

// BrandString returns the canned brand string.
func (f *Fake) BrandString() string { return f.Brand }

// HypervisorPresent returns the canned hypervisor bit.
func (f *Fake) HypervisorPresent() bool { return f.Hypervisor }

// LogicalCores returns the canned logical core count.
func (f *Fake) LogicalCores() int { return f.Logical }

// PhysicalCores returns the canned physical core count.
func (f *Fake) PhysicalCores() int { return f.Physical }

// HasFeature reports the canned feature flag.
func (f *Fake) HasFeature(name string) bool { return f.Features[name] }
