package generator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/fakeset/pkg/core"
)

// ChunkFunc generates the chunk for one task.
type ChunkFunc func(ctx context.Context, task Task) (*Chunk, error)

// Dispatcher fans tasks out to a bounded pool of workers and collects the
// chunks in task order.
type Dispatcher struct {
	// Workers bounds concurrent chunk generation. Zero means runtime.NumCPU().
	Workers int
	Logger  *zap.Logger

	// OnChunk, if set, is called from the worker goroutine after each chunk
	// completes. It must be safe for concurrent use.
	OnChunk func(*Chunk)
	// OnFailure, if set, is called once per failed chunk.
	OnFailure func(task Task, err error)
}

// Run executes fn once per task. The returned slice has one chunk per task,
// in task order, whatever order the workers finish in.
//
// The first failure cancels the remaining tasks; Run then releases every
// chunk already produced and returns that error. Cancellation of ctx is
// honored between chunks.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task, fn ChunkFunc) ([]*Chunk, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Chunk, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			chunk, err := runTask(gctx, task, fn)
			if err != nil {
				log.Error("Chunk generation failed", zap.Int("chunk_id", task.ChunkID), zap.Error(err))
				if d.OnFailure != nil {
					d.OnFailure(task, err)
				}
				return err
			}

			log.Debug("Chunk generated",
				zap.Int("chunk_id", chunk.ID),
				zap.Int("unique_rows", chunk.UniqueRows),
				zap.Int("duplicate_rows", chunk.DuplicateRows),
				zap.Duration("duration", chunk.Duration))

			results[i] = chunk
			if d.OnChunk != nil {
				d.OnChunk(chunk)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, c := range results {
			if c != nil {
				c.Release()
			}
		}
		return nil, err
	}
	return results, nil
}

// runTask calls fn and turns errors and panics into *core.WorkerError.
func runTask(ctx context.Context, task Task, fn ChunkFunc) (chunk *Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunk = nil
			err = &core.WorkerError{ChunkID: task.ChunkID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	start := time.Now()
	chunk, err = fn(ctx, task)
	if err != nil {
		return nil, &core.WorkerError{ChunkID: task.ChunkID, Err: err}
	}
	if chunk == nil {
		return nil, &core.WorkerError{ChunkID: task.ChunkID, Err: fmt.Errorf("no chunk returned")}
	}
	chunk.Duration = time.Since(start)
	return chunk, nil
}
