package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/scorebook/internal/adapters/archive"
	"github.com/okian/scorebook/internal/adapters/livestore"
	service "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

type notifications struct {
	mu      sync.Mutex
	results []model.Result
}

func (n *notifications) Publish(_ context.Context, r model.Result) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, r)
	return nil
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.results)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestService_ResultPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with an archive and a notifier", t, func() {
		arc, err := archive.Open(ctx, archive.DriverSQLite, ":memory:")
		So(err, ShouldBeNil)
		defer arc.Close()
		notes := &notifications{}

		svc := service.New(
			service.WithWorkerCount(2),
			service.WithArchive(arc),
			service.WithNotifier(notes),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		created := newTournament(ctx, svc, model.RoundRobin, "A", "B", "C")
		tid := created.Tournament.ID
		ab := created.Tournament.Matches[0].ID

		var updates []model.StandingsRow
		var mu sync.Mutex
		unsub, err := svc.Store().Subscribe(ctx, livestore.PointsTablePath(tid), func(s livestore.Snapshot) {
			var rows []model.StandingsRow
			if s.Decode(&rows) == nil {
				mu.Lock()
				updates = rows
				mu.Unlock()
			}
		})
		So(err, ShouldBeNil)
		defer unsub()

		Convey("When A beats B 180 to 160", func() {
			playMatch(ctx, svc, ab, created.Passcode, 180, 160)

			Convey("Then the workers archive the result", func() {
				So(eventually(func() bool {
					rs, err := arc.Results(ctx, tid)
					return err == nil && len(rs) == 1
				}), ShouldBeTrue)
				rs, _ := arc.Results(ctx, tid)
				So(rs[0].Winner, ShouldEqual, "A")
				So(rs[0].FirstInnings.Runs, ShouldEqual, 180)
			})

			Convey("And subscribers see the recomputed points table", func() {
				So(eventually(func() bool {
					mu.Lock()
					defer mu.Unlock()
					a, ok := standings.Row(updates, "A")
					return ok && a.Points == 2
				}), ShouldBeTrue)
			})

			Convey("And the result is announced", func() {
				So(eventually(func() bool { return notes.count() == 1 }), ShouldBeTrue)
			})

			Convey("And the stored tournament table matches the computed one", func() {
				So(eventually(func() bool {
					tour, err := svc.Tournament(ctx, tid)
					if err != nil {
						return false
					}
					a, _ := standings.Row(tour.PointsTable, "A")
					return a.Won == 1
				}), ShouldBeTrue)
			})
		})
	})
}
