package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/ardanlabs/powledger/foundation/web"
)

// m holds the set of metrics published on the debug /debug/vars endpoint.
var m = struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
}{
	goroutines: expvar.NewInt("goroutines"),
	requests:   expvar.NewInt("requests"),
	errors:     expvar.NewInt("errors"),
	panics:     expvar.NewInt("panics"),
}

// addPanic increments the panic count. Panics runs inside Metrics, so the
// recovered error is also counted as an error.
func addPanic() {
	m.panics.Add(1)
}

// Metrics updates program counters.
func Metrics() web.Middleware {
	mw := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			m.requests.Add(1)

			// Sample the goroutine count every 100 requests.
			if m.requests.Value()%100 == 0 {
				m.goroutines.Set(int64(runtime.NumGoroutine()))
			}

			if err != nil {
				m.errors.Add(1)
			}

			return err
		}

		return h
	}

	return mw
}
