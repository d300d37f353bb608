package admission

import (
	"net/http"
	"time"

	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Events         domain.EventStore
}

// ConcurrencyMiddleware limita requisições em voo para o upstream (o motor
// de orientação é lento; admissão por janela não limita simultaneidade).
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.Events != nil {
					_ = opts.Events.Record(r.Context(), domain.SecurityEvent{
						Kind:   domain.EventSaturated,
						Method: r.Method,
						Path:   r.URL.Path,
						At:     time.Now(),
					})
				}
				writeJSONError(w, opts.RejectStatus, "The Guru is busy with other seekers. Please try again shortly.", false)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
