package capability

import (
	"context"
	"testing"
)

type mockProvider struct {
	id string
}

func (m *mockProvider) Definition() Service {
	return Service{
		ID:           m.id,
		Name:         "Mock Capability",
		Description:  "A mock capability for testing",
		Category:     CategoryStorage,
		Capabilities: []string{"read", "write"},
		Tools: []Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *Context) (*Result, error) {
	return Success(map[string]interface{}{"result": "ok"})
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{id: "test"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("test"); !ok {
		t.Error("Capability should be registered")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockProvider{id: ""}); err == nil {
		t.Error("Registering an empty ID should fail")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockProvider{id: "dup"}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := r.Register(&mockProvider{id: "dup"}); err == nil {
		t.Error("Duplicate registration should fail")
	}
}

func TestListPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "storage"})
	r.Register(&mockProvider{id: "notification"})

	services := r.List()
	if len(services) != 2 {
		t.Fatalf("Expected 2 capabilities, got %d", len(services))
	}
	if services[0].ID != "storage" || services[1].ID != "notification" {
		t.Errorf("Registration order not preserved: %s, %s", services[0].ID, services[1].ID)
	}
}

func TestExecuteDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "test"})

	result, err := r.Execute(context.Background(), "test.test", nil, &Context{AppID: "app"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Error("Expected successful result")
	}
}

func TestExecuteBadToolID(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Execute(context.Background(), "no-dot", nil, nil); err == nil {
		t.Error("Malformed tool ID should fail")
	}
	if _, err := r.Execute(context.Background(), "missing.tool", nil, nil); err == nil {
		t.Error("Unknown capability should fail")
	}
}
