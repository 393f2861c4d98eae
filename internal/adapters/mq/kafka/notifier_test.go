package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNotifier(t *testing.T) {
	_ = logger.Init()

	Convey("Given a notifier over a fake writer", t, func() {
		w := &fakeWriter{}
		n := New(w, "match-results")
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		n.now = func() time.Time { return at }

		r := model.Result{
			TournamentID: "t1",
			MatchID:      "m1",
			TeamA:        "A",
			TeamB:        "B",
			FirstInnings: model.InningsScore{Team: "A", Runs: 180},
			Winner:       "A",
			Status:       model.ResultStatusCompleted,
		}

		Convey("When a result is published", func() {
			So(n.Publish(context.Background(), r), ShouldBeNil)

			Convey("Then one message keyed by match id carries the JSON result", func() {
				So(w.msgs, ShouldHaveLength, 1)
				msg := w.msgs[0]
				So(string(msg.Key), ShouldEqual, "m1")
				So(msg.Time, ShouldEqual, at)
				So(msg.Headers, ShouldHaveLength, 1)
				So(string(msg.Headers[0].Value), ShouldEqual, "t1")

				var got model.Result
				So(json.Unmarshal(msg.Value, &got), ShouldBeNil)
				So(got.Winner, ShouldEqual, "A")
				So(got.FirstInnings.Runs, ShouldEqual, 180)
			})
		})

		Convey("When the writer fails", func() {
			w.err = errors.New("broker down")
			err := n.Publish(context.Background(), r)

			Convey("Then the error names the match", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "m1")
				So(errors.Is(err, w.err), ShouldBeTrue)
			})
		})

		Convey("When closed", func() {
			So(n.Close(), ShouldBeNil)
			So(w.closed, ShouldBeTrue)
		})
	})

	Convey("Given broker configuration", t, func() {
		w := NewWriter([]string{"localhost:9092", "localhost:9093"}, "match-results")

		Convey("Then the writer targets the topic", func() {
			So(w.Topic, ShouldEqual, "match-results")
			So(w.Addr.String(), ShouldContainSubstring, "localhost:9092")
		})
	})
}
