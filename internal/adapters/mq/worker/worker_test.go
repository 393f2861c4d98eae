package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scorebook/internal/adapters/mq/queue"
	worker "github.com/okian/scorebook/internal/adapters/mq/worker"
	model "github.com/okian/scorebook/internal/domain/model"
	logging "github.com/okian/scorebook/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// recorder implements Recomputer, Archiver and Notifier.
type recorder struct {
	mu         sync.Mutex
	recomputed []string
	archived   []string
	notified   []string
	failFor    map[string]error
}

func newRecorder() *recorder {
	return &recorder{failFor: map[string]error{}}
}

func (r *recorder) RecomputeStandings(_ context.Context, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputed = append(r.recomputed, tournamentID)
	return r.failFor["recompute:"+tournamentID]
}

func (r *recorder) SaveResult(_ context.Context, res model.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor["archive:"+res.MatchID]; err != nil {
		return err
	}
	r.archived = append(r.archived, res.MatchID)
	return nil
}

func (r *recorder) Publish(_ context.Context, res model.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, res.MatchID)
	return nil
}

func (r *recorder) counts() (recomputed, archived, notified int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recomputed), len(r.archived), len(r.notified)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func result(tid, mid string) model.Result {
	return model.Result{TournamentID: tid, MatchID: mid, TeamA: "A", TeamB: "B", Winner: "A", Status: model.ResultStatusCompleted}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a result queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		rec := newRecorder()
		w := worker.NewInMemoryWorker(q, rec,
			worker.WithName("test-worker"),
			worker.WithArchive(rec),
			worker.WithNotifier(rec),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a result is enqueued", func() {
			convey.So(q.Enqueue(ctx, result("t1", "m1")), convey.ShouldBeNil)

			convey.Convey("Then it is archived, standings are recomputed and consumers are notified", func() {
				convey.So(waitFor(func() bool { _, _, n := rec.counts(); return n == 1 }), convey.ShouldBeTrue)
				rec.mu.Lock()
				defer rec.mu.Unlock()
				convey.So(rec.archived, convey.ShouldResemble, []string{"m1"})
				convey.So(rec.recomputed, convey.ShouldResemble, []string{"t1"})
				convey.So(rec.notified, convey.ShouldResemble, []string{"m1"})
			})
		})

		convey.Convey("When archiving fails", func() {
			rec.failFor["archive:m2"] = errors.New("disk full")
			convey.So(q.Enqueue(ctx, result("t1", "m2")), convey.ShouldBeNil)

			convey.Convey("Then standings are still recomputed", func() {
				convey.So(waitFor(func() bool { r, _, _ := rec.counts(); return r == 1 }), convey.ShouldBeTrue)
				_, archived, _ := rec.counts()
				convey.So(archived, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops cleanly and a second call is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, newRecorder())
		ctx, cancel := context.WithCancel(context.Background())

		stopped := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(stopped)
		}()

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-stopped:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, queue.NewInMemoryQueue(), newRecorder())

			convey.Convey("Then it defaults to at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When many results are processed and the pool shuts down", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(256))
			rec := newRecorder()
			pool := worker.NewPool(4, q, rec, worker.WithArchive(rec))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			for i := 0; i < 100; i++ {
				convey.So(q.Enqueue(ctx, result("t1", fmt.Sprintf("m%d", i))), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued result is drained before the workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				recomputed, archived, notified := rec.counts()
				convey.So(recomputed, convey.ShouldEqual, 100)
				convey.So(archived, convey.ShouldEqual, 100)
				convey.So(notified, convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
