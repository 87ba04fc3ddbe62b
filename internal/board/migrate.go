package board

import "fmt"

// Migrate brings a loaded document up to the current schema version and
// repairs data-sharing drift. It returns whether the document was changed.
//
// Version history:
//
//	1: widgets only
//	2: adds the dataSharing section (permissions + links)
//
// The v2 migration populates both arrays as empty — never nil, never only
// one of them — so every later reader can assume the section exists. On
// every load the links array is re-derived from the permissions array; a
// document whose links drifted (hand-edited file, interrupted save) is
// repaired rather than rejected, since permissions are the authoritative
// record and links are a read model.
func Migrate(d *Document) (bool, error) {
	if d.SchemaVersion > SchemaVersion {
		return false, fmt.Errorf("board: document schema version %d is newer than supported version %d", d.SchemaVersion, SchemaVersion)
	}

	changed := false

	if d.SchemaVersion < 1 {
		d.SchemaVersion = 1
		changed = true
	}
	if d.Widgets == nil {
		d.Widgets = []Widget{}
		changed = true
	}

	if d.SchemaVersion < 2 {
		d.SchemaVersion = 2
		d.DataSharing = DataSharing{
			Permissions: []Permission{},
			Links:       []Link{},
		}
		changed = true
	}

	if d.DataSharing.Permissions == nil {
		d.DataSharing.Permissions = []Permission{}
		changed = true
	}
	if rebuilt, ok := rebuildLinks(d.DataSharing.Permissions, d.DataSharing.Links); !ok {
		d.DataSharing.Links = rebuilt
		changed = true
	}

	return changed, nil
}

// rebuildLinks derives the link array from the permission array. The second
// return is true when the existing links already match one-to-one in order.
func rebuildLinks(perms []Permission, links []Link) ([]Link, bool) {
	want := make([]Link, len(perms))
	for i, p := range perms {
		want[i] = Link{
			ConsumerWidgetID: p.ConsumerWidgetID,
			ProviderWidgetID: p.ProviderWidgetID,
			ContractID:       p.ContractID,
		}
	}

	if links != nil && len(links) == len(want) {
		match := true
		for i := range want {
			if links[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return links, true
		}
	}
	return want, false
}
