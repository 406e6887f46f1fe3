package technique

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func stub(name string, outcome Outcome) Technique {
	return New(name, "stub technique", func() Result {
		return Result{Outcome: outcome}
	})
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if r.Len() != 0 {
		t.Error("new registry should have no techniques")
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(stub("vmid", OutcomeNotDetected)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := r.Get("vmid")
	if !ok {
		t.Fatal("expected to find registered technique")
	}
	if got.Name() != "vmid" {
		t.Errorf("expected name 'vmid', got %q", got.Name())
	}
	if !r.IsRegistered("vmid") {
		t.Error("IsRegistered should report true")
	}
	if r.IsRegistered("cpu_brand") {
		t.Error("IsRegistered should report false for unknown name")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	first := stub("vmid", OutcomeNotDetected)
	if err := r.Register(first); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	err := r.Register(stub("vmid", OutcomeDetected))
	if err == nil {
		t.Fatal("duplicate Register should fail")
	}

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
	if dup.Name != "vmid" {
		t.Errorf("expected duplicate name 'vmid', got %q", dup.Name)
	}

	// The stored technique must be unchanged.
	if r.Len() != 1 {
		t.Errorf("expected 1 technique after duplicate, got %d", r.Len())
	}
	stored, _ := r.Get("vmid")
	if stored != first {
		t.Error("duplicate registration must not replace the stored technique")
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(nil); !errors.Is(err, ErrNilTechnique) {
		t.Errorf("expected ErrNilTechnique, got %v", err)
	}
	if err := r.Register(stub("", OutcomeNotDetected)); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("rejected registrations must not be stored")
	}
}

func TestTechniquesPreservesOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"vmid", "cpu_brand", "hypervisor_bit", "thread_count"}
	for _, name := range names {
		if err := r.Register(stub(name, OutcomeNotDetected)); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	if !reflect.DeepEqual(r.Names(), names) {
		t.Errorf("expected order %v, got %v", names, r.Names())
	}
}

func TestEnumerationIdempotent(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		r.Register(stub(name, OutcomeNotDetected))
	}

	first := r.Techniques()
	second := r.Techniques()
	if !reflect.DeepEqual(first, second) {
		t.Error("two consecutive snapshots should be equal")
	}
}

func TestSnapshotNotInvalidatedByLaterRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register(stub("a", OutcomeNotDetected))

	snapshot := r.Techniques()
	r.Register(stub("b", OutcomeNotDetected))

	if len(snapshot) != 1 {
		t.Errorf("snapshot should keep its length, got %d", len(snapshot))
	}
	if r.Len() != 2 {
		t.Errorf("registry should have grown to 2, got %d", r.Len())
	}
}

func TestMustRegister(t *testing.T) {
	MustRegister(stub("must_vmid", OutcomeNotDetected))
	if !DefaultRegistry.IsRegistered("must_vmid") {
		t.Error("MustRegister did not register with the default registry")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on duplicate name")
		}
	}()
	MustRegister(stub("must_vmid", OutcomeNotDetected))
}

func TestConcurrentRegistration(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(stub(fmt.Sprintf("technique_%d", i), OutcomeNotDetected))
			r.Techniques()
			r.IsRegistered("technique_0")
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("expected 50 techniques, got %d", r.Len())
	}
}
