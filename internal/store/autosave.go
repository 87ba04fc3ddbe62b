package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/boardkit/boardkit/internal/share"
	"github.com/boardkit/boardkit/internal/telemetry"
)

// Autosaver coalesces dirty marks into debounced saves. Every mutation path
// calls Notify; a save runs once the document has been quiet for the
// configured debounce interval. Stop flushes any pending save before
// returning.
type Autosaver struct {
	DB       *DB
	Share    *share.Store
	Debounce time.Duration

	// Logger receives non-fatal save failures. If nil, failures are
	// silently discarded.
	Logger io.Writer

	// Telemetry receives a document_saved event per successful save.
	Telemetry *telemetry.Emitter

	notify chan struct{}
	done   chan struct{}
}

// NewAutosaver returns an autosaver for the given store and document
// session. Call Start to begin processing notifications.
func NewAutosaver(db *DB, sh *share.Store, debounce time.Duration) *Autosaver {
	return &Autosaver{
		DB:       db,
		Share:    sh,
		Debounce: debounce,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Notify marks the document as needing a save. Never blocks; repeated
// notifications within the debounce window coalesce into one save.
func (a *Autosaver) Notify() {
	select {
	case a.notify <- struct{}{}:
	default:
	}
}

// Start begins the debounce loop.
func (a *Autosaver) Start() {
	go a.loop()
}

// Stop terminates the loop, flushing a pending save first.
func (a *Autosaver) Stop() {
	close(a.notify)
	<-a.done
}

func (a *Autosaver) loop() {
	defer close(a.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := false

	for {
		select {
		case _, ok := <-a.notify:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				if pending {
					a.save()
				}
				return
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(a.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(a.Debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			pending = false
			a.save()
		}
	}
}

func (a *Autosaver) save() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.DB.Save(ctx, a.Share.Doc); err != nil {
		a.logf("autosave: save %s: %v", a.Share.Doc.ID, err)
		return
	}
	a.Share.ClearDirty()
	_ = a.Telemetry.Emit(telemetry.Event{
		Kind:       telemetry.KindDocumentSaved,
		DocumentID: a.Share.Doc.ID,
	})
}

func (a *Autosaver) logf(format string, args ...any) {
	if a.Logger != nil {
		fmt.Fprintf(a.Logger, format+"\n", args...)
	}
}
