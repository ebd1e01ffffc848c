package socialcredit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
)

func newTestRouter(t *testing.T) (chi.Router, *socialcredit.Service) {
	svc := newSQLiteService(t)
	h := socialcredit.NewHandler(svc, 50)

	r := chi.NewRouter()
	r.Get("/api/ranks/{score}", h.HandleRank)
	r.Get("/api/leaderboard", h.HandleGlobalLeaderboard)
	r.Route("/api/guilds/{guildID}", func(r chi.Router) {
		r.Get("/leaderboard", h.HandleServerLeaderboard)
		r.Get("/stats", h.HandleServerStats)
		r.Get("/users/{userID}/score", h.HandleUserScore)
		r.Get("/users/{userID}/history", h.HandleUserHistory)
		r.Post("/users/{userID}/score", h.HandleUpdateScore)
	})
	return r, svc
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()

	Convey("Given the score API over an empty store", t, func() {
		r, svc := newTestRouter(t)

		Convey("Rank lookup classifies any integer", func() {
			w := serve(r, http.MethodGet, "/api/ranks/-501", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var s socialcredit.Standing
			So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
			So(s.Rank.Tier, ShouldEqual, socialcredit.TierEnemy)
			So(s.Penalty, ShouldEqual, socialcredit.PenaltySevere)

			w = serve(r, http.MethodGet, "/api/ranks/abc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown user reads as zero", func() {
			w := serve(r, http.MethodGet, "/api/guilds/g1/users/u1/score", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var resp socialcredit.ScoreResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Entry.Score, ShouldEqual, 0)
			So(resp.Standing.Rank.Tier, ShouldEqual, socialcredit.TierNeutral)
		})

		Convey("Posting a change updates the score", func() {
			w := serve(r, http.MethodPost, "/api/guilds/g1/users/u1/score",
				`{"change": 600, "reason": "помог товарищу", "username": "ivan", "message_content": "держи"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var resp socialcredit.UpdateResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.NewScore, ShouldEqual, 600)
			So(resp.Standing.Rank.Tier, ShouldEqual, socialcredit.TierGood)
			So(resp.Standing.Privilege, ShouldEqual, socialcredit.PrivilegeModel)

			score, err := svc.GetUserScore(ctx, "u1", "g1")
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 600)

			Convey("And history shows up", func() {
				w := serve(r, http.MethodGet, "/api/guilds/g1/users/u1/history", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var history []socialcredit.ScoreHistory
				So(json.Unmarshal(w.Body.Bytes(), &history), ShouldBeNil)
				So(len(history), ShouldEqual, 1)
				So(*history[0].MessageContent, ShouldEqual, "держи")
			})

			Convey("And stats reflect it", func() {
				w := serve(r, http.MethodGet, "/api/guilds/g1/stats", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats socialcredit.ServerStats
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.TotalUsers, ShouldEqual, 1)
				So(stats.HighestScore, ShouldEqual, 600)
			})
		})

		Convey("Posting without a reason is rejected", func() {
			w := serve(r, http.MethodPost, "/api/guilds/g1/users/u1/score", `{"change": 5, "reason": "  "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var e common.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(e.Code, ShouldEqual, "bad_request")

			score, err := svc.GetUserScore(ctx, "u1", "g1")
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0)
		})

		Convey("A change past the int64 range is refused", func() {
			w := serve(r, http.MethodPost, "/api/guilds/g1/users/u1/score", `{"change": 9223372036854775807, "reason": "max"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w = serve(r, http.MethodPost, "/api/guilds/g1/users/u1/score", `{"change": 1, "reason": "ещё"}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			var e common.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(e.Code, ShouldEqual, "score_out_of_range")
		})

		Convey("Posting garbage is rejected", func() {
			w := serve(r, http.MethodPost, "/api/guilds/g1/users/u1/score", `{"change": "many"`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Leaderboard limits are validated", func() {
			for _, u := range []string{"a", "b", "c"} {
				_, err := svc.UpdateScore(ctx, u, "g1", 10, "seed")
				So(err, ShouldBeNil)
			}

			decode := func(w *httptest.ResponseRecorder) []socialcredit.ScoreEntry {
				var entries []socialcredit.ScoreEntry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				return entries
			}

			w := serve(r, http.MethodGet, "/api/guilds/g1/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode(w)), ShouldEqual, 3)

			w = serve(r, http.MethodGet, "/api/guilds/g1/leaderboard?limit=2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode(w)), ShouldEqual, 2)

			w = serve(r, http.MethodGet, "/api/guilds/g1/leaderboard?limit=0", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")

			w = serve(r, http.MethodGet, "/api/leaderboard?limit=-1", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = serve(r, http.MethodGet, "/api/leaderboard?limit=51", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = serve(r, http.MethodGet, "/api/leaderboard?limit=ten", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = serve(r, http.MethodGet, "/api/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode(w)), ShouldEqual, 3)
		})

		Convey("An empty guild leaderboard is an empty array", func() {
			w := serve(r, http.MethodGet, "/api/guilds/nobody/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})
	})
}
