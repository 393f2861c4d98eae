package livestore

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPublisherClearedLanes(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a publisher that remembers two cleared matches", t, func() {
		store := NewMemoryStore()
		defer store.Close()
		p := NewPublisher(store, WithClearedLanes(2))

		Convey("When five matches are played and cleared", func() {
			for i := 1; i <= 5; i++ {
				id := fmt.Sprintf("m%d", i)
				So(p.PublishLive(ctx, model.LiveMatchState{MatchID: id, Seq: 1}), ShouldBeNil)
				So(p.ClearLive(ctx, id), ShouldBeNil)
			}

			Convey("Then only the two newest lanes are kept", func() {
				So(p.lanes, ShouldHaveLength, 2)
				So(p.lanes, ShouldContainKey, "m4")
				So(p.lanes, ShouldContainKey, "m5")
				So(p.cleared, ShouldResemble, []string{"m4", "m5"})
			})

			Convey("And a late write for a remembered match is still ignored", func() {
				So(p.PublishLive(ctx, model.LiveMatchState{MatchID: "m5", Seq: 2}), ShouldBeNil)
				snap, err := store.Read(ctx, LiveMatchPath("m5"))
				So(err, ShouldBeNil)
				So(snap.Exists, ShouldBeFalse)
			})

			Convey("And clearing a match twice does not count it twice", func() {
				So(p.ClearLive(ctx, "m5"), ShouldBeNil)
				So(p.cleared, ShouldResemble, []string{"m4", "m5"})
			})
		})

		Convey("When a live match is still running", func() {
			So(p.PublishLive(ctx, model.LiveMatchState{MatchID: "live", Seq: 3}), ShouldBeNil)
			for i := 0; i < 4; i++ {
				So(p.ClearLive(ctx, fmt.Sprintf("done%d", i)), ShouldBeNil)
			}

			Convey("Then its lane survives and stale states are still dropped", func() {
				So(p.lanes, ShouldContainKey, "live")
				So(p.PublishLive(ctx, model.LiveMatchState{MatchID: "live", Seq: 2}), ShouldBeNil)
				snap, _ := store.Read(ctx, LiveMatchPath("live"))
				var st model.LiveMatchState
				So(snap.Decode(&st), ShouldBeNil)
				So(st.Seq, ShouldEqual, 3)
			})
		})
	})
}
