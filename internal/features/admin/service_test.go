package admin_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/features/admin"
)

// fakeClock — управляемое время для тестов блокировок.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustHash(password string) string {
	h, err := admin.HashPassword(password)
	So(err, ShouldBeNil)
	return h
}

func TestPassword(t *testing.T) {
	Convey("Given an Argon2id hash", t, func() {
		hash := mustHash("партия")

		So(hash, ShouldStartWith, "$argon2id$v=19$m=65536,t=3,p=2$")
		So(admin.VerifyPassword("партия", hash), ShouldBeTrue)
		So(admin.VerifyPassword("неверно", hash), ShouldBeFalse)

		Convey("Malformed hashes never verify", func() {
			So(admin.VerifyPassword("x", "not-a-hash"), ShouldBeFalse)
			So(admin.VerifyPassword("x", "$argon2id$v=19$m=x$a$b"), ShouldBeFalse)
		})

		Convey("Two hashes of one password differ by salt", func() {
			So(mustHash("партия"), ShouldNotEqual, hash)
		})

		Convey("Empty passwords are refused", func() {
			_, err := admin.HashPassword("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService(t *testing.T) {
	Convey("Given an admin service", t, func() {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
		svc := admin.NewService(mustHash("secret"), admin.WithClock(clock.Now))

		Convey("A correct password opens a 24h session", func() {
			session, err := svc.Login("10.0.0.1", "secret")
			So(err, ShouldBeNil)
			So(session.Token, ShouldNotBeBlank)
			So(session.ExpiresAt, ShouldEqual, clock.Now().Add(24*time.Hour))

			_, err = svc.Authorize(session.Token)
			So(err, ShouldBeNil)
			So(svc.ActiveSessions(), ShouldEqual, 1)

			Convey("And expires after a day", func() {
				clock.Advance(24 * time.Hour)
				_, err := svc.Authorize(session.Token)
				So(err, ShouldEqual, common.ErrSessionExpired)
			})

			Convey("And logout revokes it", func() {
				So(svc.Logout(session.Token), ShouldBeTrue)
				So(svc.Logout(session.Token), ShouldBeFalse)
				_, err := svc.Authorize(session.Token)
				So(err, ShouldEqual, common.ErrSessionExpired)
			})

			Convey("And cleanup drops only expired sessions", func() {
				So(svc.Cleanup(), ShouldEqual, 0)
				clock.Advance(25 * time.Hour)
				So(svc.Cleanup(), ShouldEqual, 1)
				So(svc.ActiveSessions(), ShouldEqual, 0)
			})
		})

		Convey("Three failures lock the client for an hour", func() {
			for i := 0; i < admin.MaxAttempts; i++ {
				_, err := svc.Login("10.0.0.2", "wrong")
				So(err, ShouldEqual, common.ErrWrongPassword)
			}

			_, err := svc.Login("10.0.0.2", "secret")
			So(err, ShouldEqual, common.ErrTooManyAttempts)

			_, err = svc.Login("10.0.0.3", "secret")
			So(err, ShouldBeNil)

			clock.Advance(time.Hour + time.Second)
			_, err = svc.Login("10.0.0.2", "secret")
			So(err, ShouldBeNil)
		})

		Convey("Unknown tokens are rejected", func() {
			_, err := svc.Authorize("nope")
			So(err, ShouldEqual, common.ErrSessionExpired)
		})
	})

	Convey("Without a password hash admin access is disabled", t, func() {
		svc := admin.NewService("")
		So(svc.Enabled(), ShouldBeFalse)
		_, err := svc.Login("ip", "anything")
		So(err, ShouldEqual, common.ErrAdminDisabled)
		_, err = svc.Authorize("token")
		So(err, ShouldEqual, common.ErrAdminDisabled)
	})
}

func TestHandlers(t *testing.T) {
	Convey("Given the admin endpoints", t, func() {
		svc := admin.NewService(mustHash("secret"))
		h := admin.NewHandler(svc)
		protected := h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := admin.SessionFrom(r.Context())
			So(ok, ShouldBeTrue)
			w.WriteHeader(http.StatusTeapot)
		}))

		login := func(password string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"`+password+`"}`))
			req.RemoteAddr = "192.0.2.1:4242"
			w := httptest.NewRecorder()
			h.HandleLogin(w, req)
			return w
		}

		Convey("Login issues a token usable as a bearer", func() {
			w := login("secret")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"token"`)

			session, err := svc.Login("other", "secret")
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusTeapot)
		})

		Convey("Requests without a token are unauthorized", func() {
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Wrong passwords are unauthorized and then throttled", func() {
			for i := 0; i < admin.MaxAttempts; i++ {
				So(login("bad").Code, ShouldEqual, http.StatusUnauthorized)
			}
			So(login("secret").Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("The client key strips the port", func() {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.RemoteAddr = "198.51.100.7:5555"
			So(admin.ClientKey(req), ShouldEqual, "198.51.100.7")
		})
	})
}
