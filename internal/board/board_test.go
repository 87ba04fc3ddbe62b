package board

import (
	"encoding/json"
	"testing"
)

func TestNewDocument(t *testing.T) {
	t.Parallel()
	d := NewDocument("Weekly planning")

	if d.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", d.SchemaVersion, SchemaVersion)
	}
	if d.ID == "" {
		t.Error("document id is empty")
	}
	if d.Widgets == nil {
		t.Error("Widgets is nil, want empty slice")
	}
	if d.DataSharing.Permissions == nil || d.DataSharing.Links == nil {
		t.Error("dataSharing arrays are nil, want empty slices")
	}
}

func TestNewID_Unique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("NewID returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestDocument_Widgets(t *testing.T) {
	t.Parallel()
	d := NewDocument("")
	d.AddWidget(Widget{ID: "w1", ModuleID: "todo-module"})
	d.AddWidget(Widget{ID: "w2", ModuleID: "notes-module"})

	if !d.HasWidget("w1") {
		t.Error("HasWidget(w1) = false")
	}
	w, ok := d.Widget("w2")
	if !ok || w.ModuleID != "notes-module" {
		t.Errorf("Widget(w2) = %+v, %v", w, ok)
	}
	if d.HasWidget("w9") {
		t.Error("HasWidget(w9) = true for absent widget")
	}

	if !d.RemoveWidget("w1") {
		t.Error("RemoveWidget(w1) = false")
	}
	if d.HasWidget("w1") {
		t.Error("widget still present after RemoveWidget")
	}
	if d.RemoveWidget("w1") {
		t.Error("second RemoveWidget(w1) = true")
	}
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	t.Run("v1 document gains dataSharing section", func(t *testing.T) {
		t.Parallel()
		d := &Document{ID: "doc", SchemaVersion: 1, Widgets: []Widget{{ID: "w1", ModuleID: "m"}}}
		changed, err := Migrate(d)
		if err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		if !changed {
			t.Error("Migrate reported no change for v1 document")
		}
		if d.SchemaVersion != SchemaVersion {
			t.Errorf("SchemaVersion = %d, want %d", d.SchemaVersion, SchemaVersion)
		}
		if d.DataSharing.Permissions == nil || d.DataSharing.Links == nil {
			t.Error("migration left dataSharing arrays nil")
		}
		if len(d.DataSharing.Permissions) != 0 || len(d.DataSharing.Links) != 0 {
			t.Error("migration invented dataSharing records")
		}
	})

	t.Run("current document untouched", func(t *testing.T) {
		t.Parallel()
		d := NewDocument("")
		changed, err := Migrate(d)
		if err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		if changed {
			t.Error("Migrate changed an up-to-date document")
		}
	})

	t.Run("drifted links rebuilt from permissions", func(t *testing.T) {
		t.Parallel()
		d := NewDocument("")
		d.DataSharing.Permissions = []Permission{
			{ID: "p1", ConsumerWidgetID: "c1", ProviderWidgetID: "w1", ContractID: "boardkit.todo.v1", Scope: "read"},
		}
		d.DataSharing.Links = []Link{
			{ConsumerWidgetID: "c1", ProviderWidgetID: "w-stale", ContractID: "boardkit.todo.v1"},
			{ConsumerWidgetID: "c2", ProviderWidgetID: "w2", ContractID: "boardkit.notes.v1"},
		}

		changed, err := Migrate(d)
		if err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		if !changed {
			t.Error("Migrate did not repair drifted links")
		}
		if len(d.DataSharing.Links) != 1 {
			t.Fatalf("links = %d, want 1 (one per permission)", len(d.DataSharing.Links))
		}
		want := Link{ConsumerWidgetID: "c1", ProviderWidgetID: "w1", ContractID: "boardkit.todo.v1"}
		if d.DataSharing.Links[0] != want {
			t.Errorf("rebuilt link = %+v, want %+v", d.DataSharing.Links[0], want)
		}
	})

	t.Run("future schema rejected", func(t *testing.T) {
		t.Parallel()
		d := &Document{SchemaVersion: SchemaVersion + 1}
		if _, err := Migrate(d); err == nil {
			t.Error("Migrate accepted a future schema version")
		}
	})
}

func TestDocument_JSONShape(t *testing.T) {
	t.Parallel()
	d := NewDocument("")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Both dataSharing arrays must serialize as [] even when empty; a
	// missing array breaks older readers of the section.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	ds, ok := raw["dataSharing"].(map[string]any)
	if !ok {
		t.Fatalf("dataSharing section missing: %s", data)
	}
	if _, ok := ds["permissions"].([]any); !ok {
		t.Error("permissions did not serialize as an array")
	}
	if _, ok := ds["links"].([]any); !ok {
		t.Error("links did not serialize as an array")
	}
}
