package store

import (
	"context"
	"testing"
	"time"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/bus"
	"github.com/boardkit/boardkit/internal/contract"
	"github.com/boardkit/boardkit/internal/share"
)

func newAutosaveFixture(t *testing.T, debounce time.Duration) (*Autosaver, *DB, *share.Store) {
	t.Helper()
	db := openTestDB(t)

	contracts := contract.NewRegistry()
	if err := contracts.Register(contract.Contract{
		ID: "boardkit.mock.v1", Version: "1.0.0", ProviderID: "mock-module",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	consumers := contract.NewConsumerRegistry(contracts)

	doc := board.NewDocument("autosave test")
	doc.AddWidget(board.Widget{ID: "provider-1", ModuleID: "mock-module"})
	doc.AddWidget(board.Widget{ID: "consumer-1", ModuleID: "dashboard-module"})
	sh := share.NewStore(doc, bus.New(), contracts, consumers)

	return NewAutosaver(db, sh, debounce), db, sh
}

// waitSaved polls until the document appears in the store or the deadline
// passes.
func waitSaved(t *testing.T, db *DB, docID string) *board.Document {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		d, err := db.Load(context.Background(), docID)
		if err == nil {
			return d
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("document %s never saved", docID)
	return nil
}

func TestAutosaver_SavesAfterQuietPeriod(t *testing.T) {
	t.Parallel()
	a, db, sh := newAutosaveFixture(t, 20*time.Millisecond)
	a.Start()
	defer a.Stop()

	if _, err := sh.GrantPermission("consumer-1", "provider-1", "boardkit.mock.v1"); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}
	a.Notify()

	got := waitSaved(t, db, sh.Doc.ID)
	if len(got.DataSharing.Permissions) != 1 {
		t.Errorf("saved document has %d permissions, want 1", len(got.DataSharing.Permissions))
	}

	deadline := time.Now().Add(5 * time.Second)
	for sh.Dirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sh.Dirty() {
		t.Error("dirty flag not cleared after save")
	}
}

func TestAutosaver_StopFlushesPending(t *testing.T) {
	t.Parallel()
	// Long debounce: the save can only have happened via the Stop flush.
	a, db, sh := newAutosaveFixture(t, time.Hour)
	a.Start()

	if _, err := sh.GrantPermission("consumer-1", "provider-1", "boardkit.mock.v1"); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}
	a.Notify()
	a.Stop()

	got, err := db.Load(context.Background(), sh.Doc.ID)
	if err != nil {
		t.Fatalf("Load after Stop: %v", err)
	}
	if len(got.DataSharing.Permissions) != 1 {
		t.Errorf("flushed document has %d permissions, want 1", len(got.DataSharing.Permissions))
	}
}

func TestAutosaver_NotifyNeverBlocks(t *testing.T) {
	t.Parallel()
	a, _, _ := newAutosaveFixture(t, time.Hour)
	// Not started: the channel has capacity one and Notify must still
	// return immediately on every call.
	for i := 0; i < 100; i++ {
		a.Notify()
	}
}
