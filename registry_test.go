package limber

import "testing"

func TestRegistryCloseAllStopsClients(t *testing.T) {
	registry := NewRegistry()

	first := New(WithRegistry(registry))
	second := New(WithRegistry(registry))
	first.Start()
	second.Start()

	if registry.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", registry.Len())
	}

	registry.CloseAll()

	if first.IsRunning() || second.IsRunning() {
		t.Error("CloseAll must stop every registered client")
	}
	if registry.Len() != 0 {
		t.Errorf("Len() = %d after CloseAll, want 0", registry.Len())
	}
}

func TestRegistryCloseAllIdempotent(t *testing.T) {
	registry := NewRegistry()
	client := New(WithRegistry(registry))
	client.Start()

	registry.CloseAll()
	registry.CloseAll()

	if client.IsRunning() {
		t.Error("client should remain stopped")
	}
}

func TestRegistryRemoveLeavesClientRunning(t *testing.T) {
	registry := NewRegistry()
	client := New(WithRegistry(registry))
	client.Start()

	registry.Remove(client)
	registry.CloseAll()

	if !client.IsRunning() {
		t.Error("removed client must not be stopped by CloseAll")
	}
	client.Stop()
}

func TestClientsNotRegisteredByDefault(t *testing.T) {
	before := DefaultRegistry.Len()
	client := New()
	defer client.Stop()

	if DefaultRegistry.Len() != before {
		t.Error("New without WithRegistry must not touch the default registry")
	}
}

func TestPackageCloseAll(t *testing.T) {
	client := New(WithRegistry(DefaultRegistry))
	client.Start()

	CloseAll()

	if client.IsRunning() {
		t.Error("package CloseAll must stop clients on the default registry")
	}
}
