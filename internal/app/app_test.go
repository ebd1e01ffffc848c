package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"serotonyl.ru/socialcredit/internal/app"
	"serotonyl.ru/socialcredit/internal/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		StorageDriver:            config.StorageSQLite,
		SQLitePath:               filepath.Join(t.TempDir(), "sc.db"),
		AppTimezone:              "UTC",
		HTTPAddr:                 ":0",
		HTTPRequestTimeout:       5 * time.Second,
		RateLimitRequests:        100,
		RateLimitWindow:          time.Minute,
		LeaderboardMaxLimit:      100,
		StatsRefreshSchedule:     "*/5 * * * *",
		MetricsNamespace:         "socialcredit",
		FeatureMonitoringEnabled: true,
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	Convey("Given a SQLite configuration", t, func() {
		cfg := sqliteConfig(t)

		a, err := app.New(ctx, cfg)
		So(err, ShouldBeNil)
		defer a.Close()

		Convey("The services share one store", func() {
			_, err := a.Scores.UpdateScore(ctx, "u", "g", 15, "wired")
			So(err, ShouldBeNil)

			_, err = a.Channels.AddChannel(ctx, "g", "c", "general", "test")
			So(err, ShouldBeNil)

			So(a.Scheduler.RefreshStats(ctx), ShouldBeNil)
		})

		Convey("The API is served with health checks", func() {
			rec := httptest.NewRecorder()
			a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Admin access stays off without a hash", func() {
			So(a.Admin.Enabled(), ShouldBeFalse)
		})
	})

	Convey("An unknown driver is rejected", t, func() {
		cfg := sqliteConfig(t)
		cfg.StorageDriver = "mongo"
		_, err := app.OpenStores(ctx, cfg)
		So(err, ShouldNotBeNil)
	})
}
