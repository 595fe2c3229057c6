// Package scan populates a reconciliation index from two directory trees.
//
// The two tree scans run as independent producer goroutines feeding one
// bounded channel; a single consumer drains the channel and commits each
// record to the store. One writer means no write races by construction,
// and per-record commits mean a crash leaves a consistent partial index.
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/harrison/dirmerge/internal/filelock"
	"github.com/harrison/dirmerge/internal/hasher"
	"github.com/harrison/dirmerge/internal/index"
	"github.com/harrison/dirmerge/internal/logger"
	"github.com/harrison/dirmerge/internal/scanner"
)

const defaultQueueSize = 256

// Options configures a Coordinator.
type Options struct {
	// Ignore lists glob patterns excluded from both sides.
	Ignore []string

	// Hasher fingerprints file contents. Required.
	Hasher *hasher.Hasher

	// QueueSize bounds the producer/consumer channel. Zero means the
	// default.
	QueueSize int
}

// Coordinator runs the two-sided scan and owns the index's single writer.
type Coordinator struct {
	store *index.Store
	log   *logger.ConsoleLogger
	opts  Options
}

// NewCoordinator creates a Coordinator writing into store.
func NewCoordinator(store *index.Store, log *logger.ConsoleLogger, opts Options) *Coordinator {
	if opts.Hasher == nil {
		opts.Hasher = hasher.New()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Coordinator{store: store, log: log, opts: opts}
}

// Populate scans rootA and rootB concurrently and commits every surviving
// file into the index, side B always hashed, side A hashed only when
// hashA is true. It blocks until both producers and the consumer finish.
//
// A failure in either scan aborts the population step as a whole; records
// committed before the failure remain valid in the store. The store file
// is flock-guarded for the duration so a second invocation against the
// same store cannot interleave writes.
func (c *Coordinator) Populate(ctx context.Context, rootA, rootB string, hashA bool) error {
	scanA, err := scanner.New(rootA, index.SideA, c.opts.Ignore, c.opts.Hasher, c.log)
	if err != nil {
		return fmt.Errorf("side A: %w", err)
	}
	scanB, err := scanner.New(rootB, index.SideB, c.opts.Ignore, c.opts.Hasher, c.log)
	if err != nil {
		return fmt.Errorf("side B: %w", err)
	}

	unlock, err := c.lockStore()
	if err != nil {
		return err
	}
	defer unlock()

	mode := "full"
	if !hashA {
		mode = "absorb"
	}
	if _, err := c.store.BeginRun(ctx, scanA.Root(), scanB.Root(), mode); err != nil {
		return err
	}

	records := make(chan index.Record, c.opts.QueueSize)
	scanErrs := make(chan error, 2)

	var wg sync.WaitGroup
	produce := func(s *scanner.Scanner, computeHash bool) {
		defer wg.Done()
		err := s.Scan(computeHash, func(rec index.Record) error {
			select {
			case records <- rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			scanErrs <- err
		}
	}

	wg.Add(2)
	go produce(scanA, hashA)
	go produce(scanB, true)

	go func() {
		wg.Wait()
		close(records)
	}()

	// Single writer. On a store failure we keep draining so the producers
	// can finish and the channel closes, but commit nothing further.
	var writeErr error
	for rec := range records {
		if writeErr != nil {
			continue
		}
		if err := c.store.Insert(ctx, rec); err != nil {
			writeErr = err
		}
	}

	if writeErr != nil {
		return fmt.Errorf("populate index: %w", writeErr)
	}
	select {
	case err := <-scanErrs:
		return fmt.Errorf("populate index: %w", err)
	default:
	}
	return nil
}

// lockStore takes the exclusive population lock next to the store file.
// In-memory stores are process-local and need no lock.
func (c *Coordinator) lockStore() (func(), error) {
	if c.store.Path() == ":memory:" {
		return func() {}, nil
	}
	lock := filelock.New(c.store.Path() + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.log.Warnf("release store lock: %v", err)
		}
	}, nil
}

// PopulateAbsorb runs the absorb-mode population: B is scanned and hashed
// in full, A is scanned for sizes and paths only, then just the side-A
// records whose size collides with some side-B record are hashed. Side-A
// files that were never hashed keep an empty fingerprint and cannot match
// any B hash, so the subsequent reconciliation treats them as distinct
// content, which is exactly right for a one-directional merge into A.
func (c *Coordinator) PopulateAbsorb(ctx context.Context, rootA, rootB string) error {
	if err := c.Populate(ctx, rootA, rootB, false); err != nil {
		return err
	}

	candidates, err := c.store.SizeMatches(ctx)
	if err != nil {
		return err
	}
	c.log.Infof("Found %d files that matched sizes", len(candidates))

	for _, rec := range candidates {
		fullPath := filepath.Join(rec.SideRoot, rec.RelPath)
		c.log.Infof("Hashing file: %s", fullPath)

		hash, err := c.opts.Hasher.HashFile(fullPath)
		if err != nil {
			return fmt.Errorf("absorb hash: %w", err)
		}
		if err := c.store.SetHash(ctx, rec.Side, rec.SideRoot, rec.RelPath, hash); err != nil {
			return err
		}
	}
	return nil
}
