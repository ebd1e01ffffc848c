package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"serotonyl.ru/socialcredit/internal/features/admin"
	"serotonyl.ru/socialcredit/internal/features/monitoring"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

func useTempStore(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("APP_LOG_LEVEL", "error")
	t.Setenv("APP_TIMEZONE", "UTC")
}

func run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func TestScoreCommands(t *testing.T) {
	Convey("Given an empty SQLite store", t, func() {
		useTempStore(t)

		Convey("migrate creates the schema", func() {
			out, err := run("", "migrate")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "sqlite")
		})

		Convey("An unknown user reads as neutral", func() {
			out, err := run("", "score", "get", "g1", "u1", "--format", "json")
			So(err, ShouldBeNil)

			var resp socialcredit.ScoreResponse
			So(json.Unmarshal([]byte(out), &resp), ShouldBeNil)
			So(resp.Entry.Score, ShouldEqual, 0)
			So(resp.Standing.Rank.Tier, ShouldEqual, socialcredit.TierNeutral)
		})

		Convey("add changes the score and history records it", func() {
			_, err := run("", "score", "add", "g1", "u1", "25", "--reason", "помог", "--username", "alice")
			So(err, ShouldBeNil)
			out, err := run("", "score", "add", "--reason", "спам", "--message", "buy now", "--", "g1", "u1", "-10")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "-10 баллов")
			So(out, ShouldContainSubstring, "15 баллов")

			out, err = run("", "history", "g1", "u1", "--format", "json")
			So(err, ShouldBeNil)
			var history []*socialcredit.ScoreHistory
			So(json.Unmarshal([]byte(out), &history), ShouldBeNil)
			So(history, ShouldHaveLength, 2)
			So(history[0].ScoreChange, ShouldEqual, -10)
			So(history[0].PreviousScore, ShouldEqual, 25)
			So(*history[0].MessageContent, ShouldEqual, "buy now")
			So(history[1].MessageContent, ShouldBeNil)

			Convey("The leaderboard shows the username", func() {
				out, err := run("", "leaderboard", "--guild", "g1")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "alice")

				out, err = run("", "leaderboard")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "сервер g1")
			})

			Convey("stats render as YAML", func() {
				out, err := run("", "stats", "g1", "--format", "yaml")
				So(err, ShouldBeNil)
				var stats socialcredit.ServerStats
				So(yaml.Unmarshal([]byte(out), &stats), ShouldBeNil)
				So(stats.TotalUsers, ShouldEqual, 1)
				So(stats.TotalScoreChanges, ShouldEqual, 2)
				So(stats.HighestScore, ShouldEqual, 15)
			})
		})

		Convey("An empty reason is rejected", func() {
			_, err := run("", "score", "add", "g1", "u1", "5", "--reason", "")
			So(err, ShouldNotBeNil)
		})

		Convey("A non-numeric change is rejected", func() {
			_, err := run("", "score", "add", "g1", "u1", "lots")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRankCommand(t *testing.T) {
	Convey("rank needs no storage", t, func() {
		out, err := run("", "rank", "--", "-600")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "Враг Государства")
		So(out, ShouldContainSubstring, "SEVERE")

		out, err = run("", "rank", "--", "-9223372036854775808")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "-9 223 372 036 854 775 808 баллов")

		out, err = run("", "rank", "1200", "--format", "json")
		So(err, ShouldBeNil)
		var s socialcredit.Standing
		So(json.Unmarshal([]byte(out), &s), ShouldBeNil)
		So(s.Privilege, ShouldEqual, socialcredit.PrivilegeSupreme)
	})

	Convey("An unknown format is rejected", t, func() {
		_, err := run("", "rank", "1", "--format", "xml")
		So(err, ShouldNotBeNil)
	})
}

func TestChannelsCommands(t *testing.T) {
	Convey("Given an empty SQLite store", t, func() {
		useTempStore(t)

		out, err := run("", "channels", "add", "g1", "c1", "--name", "#general")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "#general")

		out, err = run("", "channels", "list", "g1", "--format", "json")
		So(err, ShouldBeNil)
		var channels []*monitoring.Channel
		So(json.Unmarshal([]byte(out), &channels), ShouldBeNil)
		So(channels, ShouldHaveLength, 1)
		So(channels[0].ChannelName, ShouldEqual, "general")
		So(channels[0].AddedBy, ShouldEqual, "cli")

		_, err = run("", "channels", "remove", "g1", "c1")
		So(err, ShouldBeNil)

		Convey("Removing again reports it", func() {
			_, err := run("", "channels", "remove", "g1", "c1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHashPassword(t *testing.T) {
	Convey("hash-password produces a verifiable hash", t, func() {
		out, err := run("", "hash-password", "secret")
		So(err, ShouldBeNil)
		So(admin.VerifyPassword("secret", strings.TrimSpace(out)), ShouldBeTrue)

		Convey("Or reads the password from stdin", func() {
			out, err := run("hunter2\n", "hash-password")
			So(err, ShouldBeNil)
			So(admin.VerifyPassword("hunter2", strings.TrimSpace(out)), ShouldBeTrue)
		})

		Convey("An empty password is refused", func() {
			_, err := run("", "hash-password")
			So(err, ShouldNotBeNil)
		})
	})
}
