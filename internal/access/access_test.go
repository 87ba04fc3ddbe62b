package access

import (
	"testing"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/contract"
)

func mockRegistry(t *testing.T) *contract.Registry {
	t.Helper()
	reg := contract.NewRegistry()
	if err := reg.Register(contract.Contract{
		ID: "boardkit.mock.v1", Name: "Mock", Version: "1.0.0", ProviderID: "mock-module",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func TestNewPermission(t *testing.T) {
	t.Parallel()
	p := NewPermission("consumer-1", "provider-1", "contract-A")

	if p.ID == "" {
		t.Error("permission id is empty")
	}
	if p.Scope != contract.ScopeRead {
		t.Errorf("Scope = %q, want %q", p.Scope, contract.ScopeRead)
	}
	if p.GrantedAt.IsZero() {
		t.Error("GrantedAt is zero")
	}
	if p2 := NewPermission("consumer-1", "provider-1", "contract-A"); p2.ID == p.ID {
		t.Error("two permissions share an id")
	}
}

func TestNewLink_RoundTrip(t *testing.T) {
	t.Parallel()
	// createLink(createPermission(c, p, k)) yields exactly the triple.
	p := NewPermission("consumer-1", "provider-1", "contract-A")
	got := NewLink(p)
	want := board.Link{
		ConsumerWidgetID: "consumer-1",
		ProviderWidgetID: "provider-1",
		ContractID:       "contract-A",
	}
	if got != want {
		t.Errorf("NewLink = %+v, want %+v", got, want)
	}
}

func TestCheckAccessAndFind(t *testing.T) {
	t.Parallel()
	first := NewPermission("consumer-1", "provider-1", "contract-A")
	perms := []board.Permission{
		first,
		NewPermission("consumer-1", "provider-2", "contract-A"),
		NewPermission("consumer-2", "provider-1", "contract-A"),
	}

	tests := []struct {
		name                              string
		consumerID, providerID, contractID string
		want                              bool
	}{
		{"exact match", "consumer-1", "provider-1", "contract-A", true},
		{"different provider", "consumer-1", "provider-3", "contract-A", false},
		{"different contract", "consumer-1", "provider-1", "contract-B", false},
		{"different consumer", "consumer-3", "provider-1", "contract-A", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CheckAccess(perms, tt.consumerID, tt.providerID, tt.contractID); got != tt.want {
				t.Errorf("CheckAccess = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("first match wins on duplicates", func(t *testing.T) {
		t.Parallel()
		dup := NewPermission("consumer-1", "provider-1", "contract-A")
		got, ok := FindPermission(append(perms, dup), "consumer-1", "provider-1", "contract-A")
		if !ok || got.ID != first.ID {
			t.Errorf("FindPermission returned %q, want first-registered %q", got.ID, first.ID)
		}
	})

	t.Run("non-read scope not matched", func(t *testing.T) {
		t.Parallel()
		p := NewPermission("consumer-9", "provider-9", "contract-A")
		p.Scope = "write"
		if CheckAccess([]board.Permission{p}, "consumer-9", "provider-9", "contract-A") {
			t.Error("CheckAccess matched a non-read scope")
		}
	})
}

func TestConnectionStatus(t *testing.T) {
	t.Parallel()
	widgets := []board.Widget{
		{ID: "provider-1", ModuleID: "mock-module"},
		{ID: "consumer-1", ModuleID: "dashboard-module"},
	}
	perm := NewPermission("consumer-1", "provider-1", "contract-A")

	tests := []struct {
		name    string
		perms   []board.Permission
		widgets []board.Widget
		want    Status
	}{
		{"granted and provider present", []board.Permission{perm}, widgets, StatusConnected},
		{"no permission", nil, widgets, StatusDisconnected},
		{"provider missing with permission", []board.Permission{perm}, widgets[1:], StatusBroken},
		{"provider missing without permission", nil, widgets[1:], StatusBroken},
		{"empty widget list", []board.Permission{perm}, nil, StatusBroken},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ConnectionStatus(tt.perms, tt.widgets, "consumer-1", "provider-1", "contract-A")
			if got != tt.want {
				t.Errorf("ConnectionStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPermissionFilters(t *testing.T) {
	t.Parallel()
	perms := []board.Permission{
		NewPermission("consumer-1", "provider-1", "contract-A"),
		NewPermission("consumer-1", "provider-2", "contract-B"),
		NewPermission("consumer-2", "provider-1", "contract-A"),
	}

	if got := ConsumerPermissions(perms, "consumer-1"); len(got) != 2 {
		t.Errorf("ConsumerPermissions = %d entries, want 2", len(got))
	}
	if got := ProviderPermissions(perms, "provider-1"); len(got) != 2 {
		t.Errorf("ProviderPermissions = %d entries, want 2", len(got))
	}
	if got := ConsumerPermissions(perms, "consumer-9"); got != nil {
		t.Errorf("ConsumerPermissions for unknown consumer = %v, want nil", got)
	}
}

func TestAvailableProviders(t *testing.T) {
	t.Parallel()
	reg := mockRegistry(t)
	widgets := []board.Widget{
		{ID: "w1", ModuleID: "mock-module"},
		{ID: "w2", ModuleID: "other-module"},
		{ID: "w3", ModuleID: "mock-module"},
	}

	t.Run("filters by provider module, order preserved", func(t *testing.T) {
		t.Parallel()
		got := AvailableProviders(reg, widgets, "boardkit.mock.v1")
		if len(got) != 2 {
			t.Fatalf("AvailableProviders = %d widgets, want 2", len(got))
		}
		if got[0].ID != "w1" || got[1].ID != "w3" {
			t.Errorf("provider order = %s, %s; want w1, w3", got[0].ID, got[1].ID)
		}
	})

	t.Run("unknown contract yields none", func(t *testing.T) {
		t.Parallel()
		if got := AvailableProviders(reg, widgets, "boardkit.unknown.v1"); got != nil {
			t.Errorf("AvailableProviders for unknown contract = %v, want nil", got)
		}
	})
}

func TestCanProvide(t *testing.T) {
	t.Parallel()
	reg := mockRegistry(t)
	widgets := []board.Widget{
		{ID: "w1", ModuleID: "mock-module"},
		{ID: "w2", ModuleID: "other-module"},
	}

	tests := []struct {
		name       string
		widgetID   string
		contractID string
		want       bool
	}{
		{"matching module", "w1", "boardkit.mock.v1", true},
		{"wrong module", "w2", "boardkit.mock.v1", false},
		{"absent widget", "w9", "boardkit.mock.v1", false},
		{"unknown contract", "w1", "boardkit.unknown.v1", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanProvide(reg, widgets, tt.widgetID, tt.contractID); got != tt.want {
				t.Errorf("CanProvide(%s, %s) = %v, want %v", tt.widgetID, tt.contractID, got, tt.want)
			}
		})
	}
}
