package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"serotonyl.ru/socialcredit/internal/db/sqlite"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
	"serotonyl.ru/socialcredit/internal/jobs"
)

type guildStats struct {
	users   int64
	average float64
	highest int64
	lowest  int64
}

type recordingSink struct {
	mu        sync.Mutex
	guilds    map[string]guildStats
	refreshes []error
	sessions  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{guilds: make(map[string]guildStats)}
}

func (s *recordingSink) SetGuildStats(guildID string, users int64, average float64, highest, lowest int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[guildID] = guildStats{users, average, highest, lowest}
}

func (s *recordingSink) RecordStatsRefresh(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes = append(s.refreshes, err)
}

func (s *recordingSink) SetAdminSessions(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = n
}

type brokenSource struct{ err error }

func (b brokenSource) GuildIDs(context.Context) ([]string, error) { return nil, b.err }

func (b brokenSource) ServerStats(context.Context, string) (*socialcredit.ServerStats, error) {
	return nil, b.err
}

type fakeSessions struct{ active, expired int }

func (f *fakeSessions) Cleanup() int {
	n := f.expired
	f.expired = 0
	return n
}

func (f *fakeSessions) ActiveSessions() int { return f.active }

func TestRefreshStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given scores in two guilds", t, func() {
		svc := socialcredit.NewService(socialcredit.NewSQLiteRepository(sqlite.OpenMemory(t)))
		for _, u := range []struct {
			user, guild string
			change      int64
		}{
			{"a", "g1", 100}, {"b", "g1", -50}, {"c", "g2", 7},
		} {
			_, err := svc.UpdateScore(ctx, u.user, u.guild, u.change, "seed")
			So(err, ShouldBeNil)
		}

		sink := newRecordingSink()
		s := jobs.NewScheduler(time.UTC, "*/5 * * * *", svc, sink, nil)

		Convey("A refresh publishes every guild", func() {
			So(s.RefreshStats(ctx), ShouldBeNil)
			So(sink.guilds["g1"], ShouldResemble, guildStats{2, 25, 100, -50})
			So(sink.guilds["g2"], ShouldResemble, guildStats{1, 7, 7, 7})
			So(sink.refreshes, ShouldResemble, []error{nil})
		})
	})

	Convey("Given a failing source", t, func() {
		boom := errors.New("db down")
		sink := newRecordingSink()
		s := jobs.NewScheduler(time.UTC, "*/5 * * * *", brokenSource{boom}, sink, nil)

		err := s.RefreshStats(ctx)
		So(errors.Is(err, boom), ShouldBeTrue)
		So(len(sink.refreshes), ShouldEqual, 1)
		So(errors.Is(sink.refreshes[0], boom), ShouldBeTrue)
	})
}

func TestSchedulerLifecycle(t *testing.T) {
	Convey("Given a scheduler", t, func() {
		svc := socialcredit.NewService(socialcredit.NewSQLiteRepository(sqlite.OpenMemory(t)))
		sink := newRecordingSink()
		sessions := &fakeSessions{active: 2, expired: 1}

		Convey("An invalid schedule is reported on start", func() {
			s := jobs.NewScheduler(time.UTC, "not a schedule", svc, sink, sessions)
			So(s.Start(context.Background()), ShouldNotBeNil)
		})

		Convey("A valid schedule starts and stops cleanly", func() {
			s := jobs.NewScheduler(time.UTC, "@every 1h", svc, sink, sessions)
			So(s.Start(context.Background()), ShouldBeNil)
			So(s.Stop, ShouldNotPanic)
		})

		Convey("Session cleanup publishes the active count", func() {
			s := jobs.NewScheduler(time.UTC, "@every 1h", svc, sink, sessions)
			s.CleanupSessions()
			So(sink.sessions, ShouldEqual, 2)
			So(sessions.expired, ShouldEqual, 0)
		})
	})
}
