package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPointsBuckets([]float64{5, 20}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.resolutions.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_resolutions_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "eco")
				So(m.subsystem, ShouldEqual, "points")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a resolution", func() {
			before := testutil.ToFloat64(globalManager.resolutions)
			RecordResolution(20, 0.1)

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.resolutions), ShouldEqual, before+1)
			})
		})

		Convey("When crediting activities", func() {
			RecordActivityCredited("tree", "simple")
			RecordActivityCredited("tree", "simple")

			Convey("Then the labelled counter reflects it", func() {
				v := testutil.ToFloat64(globalManager.activitiesCredited.WithLabelValues("tree", "simple"))
				So(v, ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When recording unknown labels", func() {
			before := testutil.ToFloat64(globalManager.labelsUnknown)
			RecordUnknownLabels(3)
			RecordUnknownLabels(0)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(globalManager.labelsUnknown), ShouldEqual, before+3)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordSubmissionAccepted()
				RecordSubmissionDuplicate()
				RecordSubmissionScored()
				RecordSubmissionError()
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				RecordQueueEnqueueError("queue_full")
				UpdateWorkerCount(4)
				RecordWorkerLatency(1.5)
				UpdateUsersTracked(2)
				RecordSessionTotals(12)
				RecordSessionTotals(0)
				RecordDetectorLatency(120)
				RecordDetectorError("parse")
				RecordHTTPRequest("score", "POST", "200")
				RecordHTTPRequestDuration("score", "POST", "200", 2)
				RecordHTTPError("score", "client_error")
			}, ShouldNotPanic)

			Convey("Then gauges hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			})

			Convey("And the registry exposes the eco namespace", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "eco_points_"), ShouldBeTrue)
				}
			})
		})
	})
}
