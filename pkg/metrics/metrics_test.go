package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register under the scorebook namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "scorebook")
				manager.matchesStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "scorebook_core_matches_started_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(manager.customLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "scorebook")
				So(manager.subsystem, ShouldEqual, "core")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording scoring metrics", func() {
			before := testutil.ToFloat64(globalManager.scoreEvents.WithLabelValues("Six"))
			RecordScoreEvent("Six")
			RecordScoreEvent("Six")

			Convey("Then the per-event counter should grow", func() {
				So(testutil.ToFloat64(globalManager.scoreEvents.WithLabelValues("Six")), ShouldEqual, before+2)
			})
		})

		Convey("When a match starts and completes", func() {
			live := testutil.ToFloat64(globalManager.liveMatches)
			RecordMatchStarted()
			So(testutil.ToFloat64(globalManager.liveMatches), ShouldEqual, live+1)
			RecordMatchCompleted("win")

			Convey("Then the live gauge should return to its previous value", func() {
				So(testutil.ToFloat64(globalManager.liveMatches), ShouldEqual, live)
			})
		})

		Convey("When setting gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.07)
			UpdateWorkerCount(3)
			UpdateTournaments(2)

			Convey("Then they should hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.tournaments), ShouldEqual, 2)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then none of them should panic", func() {
				So(func() {
					RecordDuplicateEvent()
					RecordInningsEnded()
					RecordPublishLatency("live", 1.5)
					RecordPublishFailure("result")
					RecordPublishRetry()
					RecordStandingsRecompute()
					RecordQueueEnqueueError()
					RecordWorkerError()
					RecordWorkerProcessingLatency(3)
					RecordHTTPRequest("/live/{id}", "GET", "200")
					RecordHTTPRequestDuration("/live/{id}", "GET", "200", 0.4)
					RecordErrorByComponent("publisher", "timeout")
					RecordErrorByEndpoint("/matches/{id}/events", "POST", "conflict")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it should be the custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
