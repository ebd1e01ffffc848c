package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
)

// Recoverer перехватывает панику обработчика, логирует стек и отвечает 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// Штатная отмена ответа в net/http
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.WithFields(log.Fields{
				"component": "panic_recovery",
				"panic":     fmt.Sprintf("%v", rec),
				"path":      r.URL.Path,
				"stack":     string(debug.Stack()),
			}).Error("ПАНИКА в обработчике — восстановлено")
			common.WriteError(w, http.StatusInternalServerError, "internal_error", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
