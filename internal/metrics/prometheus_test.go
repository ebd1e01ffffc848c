package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("Two managers with own registries do not collide", func() {
			So(func() {
				NewManager()
				NewManager()
			}, ShouldNotPanic)
		})

		Convey("Custom options are applied", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithRegistry(registry),
				WithHistogramBuckets([]float64{0.01, 0.1, 1}),
				WithRuntimeCollectors(),
			)
			So(m.Registry(), ShouldEqual, registry)

			m.ObserveScoreUpdate(1, time.Millisecond, nil)
			n, err := testutil.GatherAndCount(registry, "test_score_updates_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})
}

func TestScoreObservations(t *testing.T) {
	Convey("Given a manager", t, func() {
		m := NewManager()

		Convey("Updates are counted by direction", func() {
			m.ObserveScoreUpdate(10, time.Millisecond, nil)
			m.ObserveScoreUpdate(-3, time.Millisecond, nil)
			m.ObserveScoreUpdate(-4, time.Millisecond, nil)
			m.ObserveScoreUpdate(0, time.Millisecond, nil)

			So(testutil.ToFloat64(m.scoreUpdates.WithLabelValues(DirectionPositive)), ShouldEqual, 1)
			So(testutil.ToFloat64(m.scoreUpdates.WithLabelValues(DirectionNegative)), ShouldEqual, 2)
			So(testutil.ToFloat64(m.scoreUpdates.WithLabelValues(DirectionZero)), ShouldEqual, 1)
			So(testutil.ToFloat64(m.scoreErrors), ShouldEqual, 0)
		})

		Convey("Failures are counted separately", func() {
			m.ObserveScoreUpdate(10, time.Millisecond, errors.New("boom"))
			So(testutil.ToFloat64(m.scoreErrors), ShouldEqual, 1)
			So(testutil.ToFloat64(m.scoreUpdates.WithLabelValues(DirectionPositive)), ShouldEqual, 0)
		})

		Convey("Guild gauges are set per guild", func() {
			m.SetGuildStats("g1", 3, 133.5, 600, -300)
			So(testutil.ToFloat64(m.guildUsers.WithLabelValues("g1")), ShouldEqual, 3)
			So(testutil.ToFloat64(m.guildAverage.WithLabelValues("g1")), ShouldEqual, 133.5)
			So(testutil.ToFloat64(m.guildLowest.WithLabelValues("g1")), ShouldEqual, -300)

			m.RecordStatsRefresh(nil)
			m.RecordStatsRefresh(errors.New("db down"))
			So(testutil.ToFloat64(m.statsRefreshes.WithLabelValues("ok")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.statsRefreshes.WithLabelValues("error")), ShouldEqual, 1)
		})

		Convey("Admin sessions gauge follows the last value", func() {
			m.SetAdminSessions(2)
			m.SetAdminSessions(1)
			So(testutil.ToFloat64(m.adminSessions), ShouldEqual, 1)
		})
	})
}

func TestHTTPMiddleware(t *testing.T) {
	Convey("Given a chi router with the metrics middleware", t, func() {
		m := NewManager()
		r := chi.NewRouter()
		r.Use(m.Middleware)
		r.Get("/api/guilds/{guildID}/stats", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		r.Handle("/metrics", m.Handler())

		Convey("Requests are labeled by route pattern", func() {
			for _, g := range []string{"a", "b", "c"} {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guilds/"+g+"/stats", nil))
				So(rec.Code, ShouldEqual, http.StatusOK)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

			So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/guilds/{guildID}/stats", "GET", "200")), ShouldEqual, 3)
			So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/missing", "GET", "404")), ShouldEqual, 1)
		})

		Convey("The metrics endpoint exposes the registry", func() {
			m.ObserveScoreUpdate(5, time.Millisecond, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "socialcredit_score_updates_total"), ShouldBeTrue)
		})
	})
}
