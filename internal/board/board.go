// Package board defines the document model for a Boardkit canvas: the
// widgets placed on it and the persisted data-sharing section (permissions
// and their denormalized links).
//
// The document is plain data. Mutations to the data-sharing section go
// through the share package, which keeps the permission and link arrays in
// lockstep and records history labels; nothing else writes them directly.
package board

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// SchemaVersion is the current document schema version. Version 2
// introduced the dataSharing section.
const SchemaVersion = 2

// Widget is one sandboxed widget instance on the canvas. Widget ids are
// ULIDs and are never reused, even across undo/redo of a deletion.
type Widget struct {
	ID       string          `json:"id"`
	ModuleID string          `json:"moduleId"`
	Title    string          `json:"title,omitempty"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	State    json.RawMessage `json:"state,omitempty"`
}

// Permission grants one consumer widget read access to one provider
// widget's data under a contract. Permissions are immutable after creation;
// revocation deletes the record rather than updating it.
type Permission struct {
	ID               string    `json:"id"`
	ConsumerWidgetID string    `json:"consumerWidgetId"`
	ProviderWidgetID string    `json:"providerWidgetId"`
	ContractID       string    `json:"contractId"`
	Scope            string    `json:"scope"`
	GrantedAt        time.Time `json:"grantedAt"`
}

// Link is a permission stripped to its connection triple. Links exist as a
// diff-friendly read model of active connections; every link corresponds to
// exactly one live permission and is removed in lockstep with it.
type Link struct {
	ConsumerWidgetID string `json:"consumerWidgetId"`
	ProviderWidgetID string `json:"providerWidgetId"`
	ContractID       string `json:"contractId"`
}

// DataSharing is the document-owned persistence of grants. Both arrays are
// always present once a document is at the current schema version; an empty
// section has empty arrays, never nil.
type DataSharing struct {
	Permissions []Permission `json:"permissions"`
	Links       []Link       `json:"links"`
}

// Document is a Boardkit canvas document.
type Document struct {
	ID            string      `json:"id"`
	SchemaVersion int         `json:"schemaVersion"`
	Title         string      `json:"title,omitempty"`
	Widgets       []Widget    `json:"widgets"`
	DataSharing   DataSharing `json:"dataSharing"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument(title string) *Document {
	return &Document{
		ID:            NewID(),
		SchemaVersion: SchemaVersion,
		Title:         title,
		Widgets:       []Widget{},
		DataSharing: DataSharing{
			Permissions: []Permission{},
			Links:       []Link{},
		},
	}
}

// NewID returns a fresh ULID. Used for document, widget, and permission
// ids; ULIDs sort by creation time, which keeps grantedAt ordering and id
// ordering consistent.
func NewID() string {
	return ulid.Make().String()
}

// HasWidget reports whether a widget with the given id is on the canvas.
func (d *Document) HasWidget(widgetID string) bool {
	for _, w := range d.Widgets {
		if w.ID == widgetID {
			return true
		}
	}
	return false
}

// Widget returns the widget with the given id, and whether it exists.
func (d *Document) Widget(widgetID string) (Widget, bool) {
	for _, w := range d.Widgets {
		if w.ID == widgetID {
			return w, true
		}
	}
	return Widget{}, false
}

// AddWidget places a widget on the canvas.
func (d *Document) AddWidget(w Widget) {
	d.Widgets = append(d.Widgets, w)
}

// RemoveWidget takes a widget off the canvas. It does not touch the
// data-sharing section or the bus; deletion paths go through
// share.Store.DetachWidget so both are cleaned together.
func (d *Document) RemoveWidget(widgetID string) bool {
	for i, w := range d.Widgets {
		if w.ID == widgetID {
			d.Widgets = append(d.Widgets[:i], d.Widgets[i+1:]...)
			return true
		}
	}
	return false
}
