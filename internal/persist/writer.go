package persist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/world"
)

// Writer drains autosave snapshots on its own goroutine so the tick
// pipeline never blocks on database I/O. The channel is the boundary:
// only plain snapshot data crosses it.
type Writer struct {
	repo *SaveRepo
	name string
	log  *zap.Logger
	ch   chan *world.Snapshot
	done chan struct{}
}

func NewWriter(repo *SaveRepo, saveName string, log *zap.Logger) *Writer {
	w := &Writer{
		repo: repo,
		name: saveName,
		log:  log,
		ch:   make(chan *world.Snapshot, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Offer hands a snapshot to the writer without blocking. Returns false when
// the previous write is still in flight; the caller just skips this save.
func (w *Writer) Offer(snap *world.Snapshot) bool {
	select {
	case w.ch <- snap:
		return true
	default:
		return false
	}
}

// Close flushes pending work and stops the goroutine.
func (w *Writer) Close() {
	close(w.ch)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for snap := range w.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := w.repo.Put(ctx, w.name, snap)
		cancel()
		if err != nil {
			w.log.Error("autosave failed", zap.Error(err), zap.Uint64("tick", snap.Tick))
			continue
		}
		w.log.Info("world saved",
			zap.String("save", w.name),
			zap.Uint64("tick", snap.Tick),
		)
	}
}
