package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/scorebook/internal/adapters/livestore"
	"github.com/okian/scorebook/internal/adapters/livestore/redisstore"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisstore.New(client, redisstore.WithPrefix("test")), mr
}

func receive(got <-chan livestore.Snapshot) livestore.Snapshot {
	select {
	case sn := <-got:
		return sn
	case <-time.After(2 * time.Second):
		return livestore.Snapshot{Path: "timeout"}
	}
}

func TestRedisStore(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a redis live store", t, func() {
		s, mr := newStore(t)
		defer func() { _ = s.Close() }()

		Convey("When a value is written", func() {
			err := s.Write(ctx, livestore.LiveMatchPath("m1"), model.LiveMatchState{MatchID: "m1", Runs: 9})
			So(err, ShouldBeNil)

			Convey("Then it is stored under the prefixed key", func() {
				So(mr.Exists("test:liveMatches/m1"), ShouldBeTrue)
				snap, err := s.Read(ctx, livestore.LiveMatchPath("m1"))
				So(err, ShouldBeNil)
				var st model.LiveMatchState
				So(snap.Decode(&st), ShouldBeNil)
				So(st.Runs, ShouldEqual, 9)
			})
		})

		Convey("When a missing path is read", func() {
			snap, err := s.Read(ctx, livestore.LiveMatchPath("none"))

			Convey("Then it does not exist", func() {
				So(err, ShouldBeNil)
				So(snap.Exists, ShouldBeFalse)
			})
		})

		Convey("When a tournament is removed", func() {
			_ = s.Write(ctx, livestore.TournamentPath("t1"), map[string]string{"id": "t1"})
			_ = s.Write(ctx, livestore.MatchPath("t1", "m1"), map[string]string{"id": "m1"})
			_ = s.Write(ctx, livestore.PointsTablePath("t1"), []string{})
			_ = s.Write(ctx, livestore.TournamentPath("t2"), map[string]string{"id": "t2"})
			So(s.Remove(ctx, livestore.TournamentPath("t1")), ShouldBeNil)

			Convey("Then children are removed and siblings kept", func() {
				So(mr.Exists("test:tournaments/t1"), ShouldBeFalse)
				So(mr.Exists("test:tournaments/t1/matches/m1"), ShouldBeFalse)
				So(mr.Exists("test:tournaments/t1/pointsTable"), ShouldBeFalse)
				So(mr.Exists("test:tournaments/t2"), ShouldBeTrue)
			})
		})

		Convey("When subscribing to a path", func() {
			path := livestore.LiveMatchPath("m1")
			_ = s.Write(ctx, path, model.LiveMatchState{MatchID: "m1", Seq: 1})
			got := make(chan livestore.Snapshot, 16)
			unsub, err := s.Subscribe(ctx, path, func(sn livestore.Snapshot) { got <- sn })
			So(err, ShouldBeNil)
			defer unsub()

			next := func() livestore.Snapshot {
				select {
				case sn := <-got:
					return sn
				case <-time.After(2 * time.Second):
					return livestore.Snapshot{Path: "timeout"}
				}
			}

			Convey("Then it sees the current value, changes and removal", func() {
				first := next()
				So(first.Exists, ShouldBeTrue)

				_ = s.Write(ctx, path, model.LiveMatchState{MatchID: "m1", Seq: 2})
				second := next()
				var st model.LiveMatchState
				So(second.Decode(&st), ShouldBeNil)
				So(st.Seq, ShouldEqual, 2)

				_ = s.Remove(ctx, path)
				gone := next()
				So(gone.Path, ShouldEqual, path)
				So(gone.Exists, ShouldBeFalse)
			})
		})

		Convey("When an announcement older than the value read at subscribe arrives", func() {
			path := livestore.LiveMatchPath("m2")
			So(s.Write(ctx, path, model.LiveMatchState{MatchID: "m2", Seq: 1}), ShouldBeNil)
			So(s.Write(ctx, path, model.LiveMatchState{MatchID: "m2", Seq: 2}), ShouldBeNil)
			got := make(chan livestore.Snapshot, 16)
			unsub, err := s.Subscribe(ctx, path, func(sn livestore.Snapshot) { got <- sn })
			So(err, ShouldBeNil)
			defer unsub()

			pub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer func() { _ = pub.Close() }()
			stale := `{"rev":1,"exists":true,"value":{"matchId":"m2","seq":1}}`
			So(pub.Publish(ctx, "test:chan:"+path, stale).Err(), ShouldBeNil)
			So(s.Write(ctx, path, model.LiveMatchState{MatchID: "m2", Seq: 3}), ShouldBeNil)

			Convey("Then the subscriber never goes back to it", func() {
				var seqs []uint64
				for i := 0; i < 2; i++ {
					var st model.LiveMatchState
					So(receive(got).Decode(&st), ShouldBeNil)
					seqs = append(seqs, st.Seq)
				}
				So(seqs, ShouldResemble, []uint64{2, 3})
			})
		})
	})
}
