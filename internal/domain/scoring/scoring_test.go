package scoring_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestModelApply(t *testing.T) {
	Convey("Given the default scoring model", t, func() {
		m := scoring.NewModel()
		zero := scoring.Tally{}

		cases := []struct {
			event   scoring.Event
			runs    int
			wickets int
			balls   int
		}{
			{scoring.DotBall, 0, 0, 1},
			{scoring.Single, 1, 0, 1},
			{scoring.Double, 2, 0, 1},
			{scoring.Boundary, 4, 0, 1},
			{scoring.Six, 6, 0, 1},
			{scoring.Wicket, 0, 1, 1},
			{scoring.Wide, 1, 0, 0},
			{scoring.NoBall, 1, 0, 0},
			{scoring.Bye, 1, 0, 1},
			{scoring.LegBye, 1, 0, 1},
		}

		for _, tc := range cases {
			got, err := m.Apply(zero, tc.event)

			Convey("Then "+string(tc.event)+" should apply its table effect", func() {
				So(err, ShouldBeNil)
				So(got.Runs, ShouldEqual, tc.runs)
				So(got.Wickets, ShouldEqual, tc.wickets)
				So(got.Balls, ShouldEqual, tc.balls)
			})
		}

		Convey("When applying a wide", func() {
			start := scoring.Tally{Runs: 10, Balls: 5}
			got, _ := m.Apply(start, scoring.Wide)

			Convey("Then runs grow by one and the over does not advance", func() {
				So(got.Runs, ShouldEqual, 11)
				So(got.Balls, ShouldEqual, 5)
				So(start.Runs, ShouldEqual, 10)
			})
		})

		Convey("When applying an unknown event", func() {
			_, err := m.Apply(zero, scoring.Event("Dead Ball"))

			Convey("Then it should be rejected as invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestOversInvariant(t *testing.T) {
	Convey("Given a random sequence of events", t, func() {
		m := scoring.NewModel()
		events := m.Events()
		rng := rand.New(rand.NewSource(7))

		var tally scoring.Tally
		legal := 0
		held := true
		for i := 0; i < 500; i++ {
			e := events[rng.Intn(len(events))]
			eff, _ := m.Effect(e)
			if eff.Legal {
				legal++
			}
			tally, _ = m.Apply(tally, e)
			if tally.Balls != legal || tally.Overs() != tally.Balls/6 || tally.BallInOver() != tally.Balls%6 {
				held = false
			}
		}

		Convey("Then balls counts legal deliveries and overs equals balls div 6 after every event", func() {
			So(held, ShouldBeTrue)
		})
	})
}

func TestOversDisplay(t *testing.T) {
	Convey("Given 15 legal balls", t, func() {
		tally := scoring.Tally{Balls: 15}

		Convey("Then the display should read 2.3", func() {
			So(tally.Overs(), ShouldEqual, 2)
			So(tally.BallInOver(), ShouldEqual, 3)
			So(tally.OversDisplay(), ShouldEqual, "2.3")
		})
	})
}

func TestWithEvent(t *testing.T) {
	Convey("Given a model extended with a penalty event", t, func() {
		penalty := scoring.Event("PenaltyRuns")
		m := scoring.NewModel(scoring.WithEvent(penalty, scoring.Effect{Runs: 5}))

		Convey("When applying the new event", func() {
			got, err := m.Apply(scoring.Tally{}, penalty)

			Convey("Then the registered effect should be used", func() {
				So(err, ShouldBeNil)
				So(got.Runs, ShouldEqual, 5)
				So(got.Balls, ShouldEqual, 0)
			})
		})

		Convey("When parsing it by name", func() {
			e, err := m.ParseEvent("penalty runs")

			Convey("Then it should resolve", func() {
				So(err, ShouldBeNil)
				So(e, ShouldEqual, penalty)
			})
		})
	})
}

func TestParseEvent(t *testing.T) {
	Convey("Given client spellings", t, func() {
		m := scoring.NewModel()

		Convey("Then they should resolve to canonical events", func() {
			for in, want := range map[string]scoring.Event{
				"Dot Ball": scoring.DotBall,
				"single":   scoring.Single,
				"SIX":      scoring.Six,
				"leg-bye":  scoring.LegBye,
				"no_ball":  scoring.NoBall,
			} {
				got, err := m.ParseEvent(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then an unknown spelling should fail", func() {
			_, err := m.ParseEvent("triple")
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})
	})
}
