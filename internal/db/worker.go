package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrWorkerClosed is returned by Do after Close has been called.
var ErrWorkerClosed = errors.New("db worker closed")

type TxFn func(ctx context.Context, tx *sql.Tx) error

type job struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Worker runs every write as its own transaction on a single goroutine, so
// read-then-write sequences inside one TxFn cannot interleave with another
// writer.
type Worker struct {
	db     *sql.DB
	jobs   chan job
	done   chan struct{}
	closed chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:     db,
		jobs:   make(chan job, 256),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close stops accepting jobs, finishes those already queued and waits for
// the loop to exit. It must be called at most once.
func (w *Worker) Close() {
	close(w.closed)
	<-w.done
}

// Do runs fn in its own transaction on the worker goroutine and returns its
// error, or the commit error. fn's error rolls the transaction back.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	select {
	case <-w.closed:
		return ErrWorkerClosed
	default:
	}

	ch := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, ch: ch}

	// Enqueue. Bail out if the worker shuts down or the caller's context
	// expires while the buffer is full.
	select {
	case w.jobs <- j:
	case <-w.closed:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Wait for the result. Bail out if the caller's context expires while
	// the job is queued or executing. The loop still finishes the
	// transaction; the result lands in the buffered ch and is dropped.
	select {
	case err := <-ch:
		return err
	case <-w.done:
		// The loop drains the queue before closing done, so a job that made
		// it in has already answered.
		select {
		case err := <-ch:
			return err
		default:
			return ErrWorkerClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for {
		select {
		case j := <-w.jobs:
			w.run(j)
		case <-w.closed:
			// Drain what was enqueued before Close; Do refuses new jobs.
			for {
				select {
				case j := <-w.jobs:
					w.run(j)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) run(j job) {
	// Skip work nobody is waiting for any more.
	if err := j.ctx.Err(); err != nil {
		j.ch <- err
		return
	}

	tx, err := w.db.BeginTx(j.ctx, nil)
	if err != nil {
		j.ch <- err
		return
	}

	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		j.ch <- err
		return
	}

	j.ch <- tx.Commit()
}
