package admission

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"guru-gateway/middleware/admission/domain"
)

type ShieldOptions struct {
	// RPS é a taxa global do processo; <= 0 desliga o escudo.
	RPS          float64
	Burst        int
	RejectStatus int
	Events       domain.EventStore
}

// ShieldMiddleware é o escudo de capacidade agregada: um único token bucket
// para o processo inteiro, na frente de tudo. Independe das janelas por
// chamador — protege o motor de orientação quando o tráfego total estoura,
// não um chamador específico.
func ShieldMiddleware(opts ShieldOptions) func(next http.Handler) http.Handler {
	if opts.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.RPS)
		if opts.Burst < 1 {
			opts.Burst = 1
		}
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	lim := rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				if opts.Events != nil {
					_ = opts.Events.Record(r.Context(), domain.SecurityEvent{
						Kind:   domain.EventSaturated,
						Method: r.Method,
						Path:   r.URL.Path,
						At:     time.Now(),
					})
				}
				writeJSONError(w, opts.RejectStatus, "The Guru is overwhelmed right now. Please try again in a moment.", false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
