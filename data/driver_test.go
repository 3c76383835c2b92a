package data

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type mockDatabaseDriver struct {
	name string
}

func (m *mockDatabaseDriver) Name() string { return m.name }

func (m *mockDatabaseDriver) Connect(_ context.Context, _ any) (any, error) {
	return "mock-conn", nil
}

func (m *mockDatabaseDriver) Close(_ any) error { return nil }

func (m *mockDatabaseDriver) Ping(_ context.Context, _ any) error { return nil }

func resetDatabaseDrivers() {
	databaseDriversMu.Lock()
	defer databaseDriversMu.Unlock()
	databaseDrivers = make(map[string]DatabaseDriver)
}

func TestRegisterDatabaseDriver(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	RegisterDatabaseDriver(&mockDatabaseDriver{name: "mockdb"})

	got, err := GetDatabaseDriver("mockdb")
	if err != nil {
		t.Fatalf("GetDatabaseDriver(mockdb) error = %v", err)
	}
	if got.Name() != "mockdb" {
		t.Errorf("driver.Name() = %q, want %q", got.Name(), "mockdb")
	}
}

func TestRegisterDatabaseDriverNil(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	defer func() {
		if r := recover(); r == nil {
			t.Error("RegisterDatabaseDriver(nil) did not panic")
		}
	}()
	RegisterDatabaseDriver(nil)
}

func TestRegisterDatabaseDriverEmptyName(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	defer func() {
		if r := recover(); r == nil {
			t.Error("RegisterDatabaseDriver with empty name did not panic")
		}
	}()
	RegisterDatabaseDriver(&mockDatabaseDriver{name: ""})
}

func TestRegisterDatabaseDriverDuplicate(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	RegisterDatabaseDriver(&mockDatabaseDriver{name: "dup"})

	defer func() {
		if r := recover(); r == nil {
			t.Error("duplicate RegisterDatabaseDriver did not panic")
		}
	}()
	RegisterDatabaseDriver(&mockDatabaseDriver{name: "dup"})
}

func TestGetDatabaseDriverNotFound(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	RegisterDatabaseDriver(&mockDatabaseDriver{name: "onlyone"})

	_, err := GetDatabaseDriver("missing")
	if err == nil {
		t.Fatal("GetDatabaseDriver(missing) error = nil, want error")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the missing driver", err)
	}
	if !strings.Contains(err.Error(), "onlyone") {
		t.Errorf("error %q does not list registered drivers", err)
	}
}

func TestListRegisteredDrivers(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	RegisterDatabaseDriver(&mockDatabaseDriver{name: "alpha"})
	RegisterDatabaseDriver(&mockDatabaseDriver{name: "beta"})

	listed := ListRegisteredDrivers()
	dbs, ok := listed["database"]
	if !ok {
		t.Fatal("ListRegisteredDrivers() missing database section")
	}
	if len(dbs) != 2 {
		t.Fatalf("len(database drivers) = %d, want 2", len(dbs))
	}
	seen := map[string]bool{}
	for _, name := range dbs {
		seen[name] = true
	}
	if !seen["alpha"] || !seen["beta"] {
		t.Errorf("listed drivers = %v, want alpha and beta", dbs)
	}
}

func TestRegisterDatabaseDriverConcurrent(t *testing.T) {
	resetDatabaseDrivers()
	defer resetDatabaseDrivers()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			RegisterDatabaseDriver(&mockDatabaseDriver{name: fmt.Sprintf("drv-%d", i)})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("drv-%d", i)
		if _, err := GetDatabaseDriver(name); err != nil {
			t.Errorf("GetDatabaseDriver(%s) error = %v", name, err)
		}
	}
}
