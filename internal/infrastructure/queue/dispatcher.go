package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

// Dispatcher removes product photos in the background. Paths are sharded
// across a fixed set of workers by fnv hash, so a path is always handled by
// the same worker.
type Dispatcher struct {
	workers []chan string
	store   ports.AssetStore
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.AssetCleaner = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.AssetStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Stop
// has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Schedule queues publicPath for removal. It never blocks: when the worker's
// queue is full or the dispatcher is stopped the path is dropped and logged.
func (d *Dispatcher) Schedule(publicPath string) {
	if publicPath == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("path", publicPath).Msg("asset cleanup stopped, dropping path")
		return
	}

	select {
	case d.workers[d.shardIndex(publicPath)] <- publicPath:
	default:
		d.log.Warn().Str("path", publicPath).Msg("asset cleanup queue full, dropping path")
	}
}

// Stop closes the queues and waits for the workers to finish what is queued.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shardIndex(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-ch:
			if !ok {
				return
			}
			if err := d.store.Remove(ctx, path); err != nil {
				d.log.Warn().Err(err).
					Str("path", path).
					Int("worker_id", id).
					Msg("asset removal failed")
				continue
			}
			d.log.Debug().Str("path", path).Int("worker_id", id).Msg("asset removed")
		}
	}
}
