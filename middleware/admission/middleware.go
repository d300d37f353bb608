package admission

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

type Options struct {
	Windows   domain.WindowStore
	Cooldowns domain.CooldownStore
	Resolver  *application.Resolver

	FingerprintFn FingerprintFunc

	Detector *application.Detector
	// OnBotDetected é a política explícita de escalonamento do sinal de bot:
	// a duração retornada (> 0) vira um cooldown para o fingerprint.
	// nil = só registrar/logar.
	OnBotDetected func(key domain.Key) time.Duration

	Filter *application.Filter

	Events domain.EventStore
	Logger *slog.Logger
}

type gateway struct {
	opts      Options
	svc       application.Service
	cooldowns application.CooldownService
}

// Middleware monta o pipeline de admissão por requisição:
// fingerprint -> cooldown -> janela -> (handler) -> filtro de segurança.
//
// Negações saem como 429 com corpo JSON {error, cooldown?} e os headers
// X-RateLimit-Limit/Remaining/Reset (unix); os mesmos headers acompanham as
// respostas admitidas. Não há retry interno: quem foi negado espera e tenta
// de novo.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Resolver == nil {
		opts.Resolver = application.NewResolver(application.DefaultClasses(), application.DefaultFallback())
	}
	if opts.FingerprintFn == nil {
		opts.FingerprintFn = Fingerprint(nil)
	}
	if opts.Filter == nil {
		opts.Filter = application.NewFilter(infra.DefaultRules())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	g := &gateway{
		opts:      opts,
		svc:       application.Service{Windows: opts.Windows, Cooldowns: opts.Cooldowns, Logger: opts.Logger},
		cooldowns: application.CooldownService{Store: opts.Cooldowns},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.handle(next, w, r)
		})
	}
}

func (g *gateway) handle(next http.Handler, w http.ResponseWriter, r *http.Request) {
	key := g.opts.FingerprintFn(r)
	class := g.opts.Resolver.Resolve(r.URL.Path)

	dec := g.svc.Decide(r.Context(), key, class)

	w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
	w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
	if !dec.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", formatUnix(dec.ResetAt))
	}

	if !dec.Allowed {
		kind := domain.EventRateLimited
		if dec.Cooldown {
			kind = domain.EventCooldown
		}
		g.record(r, key, class, kind)
		// negação é esperada: nunca é Error
		g.opts.Logger.Info("request denied", "reason", string(kind), "class", class.Name, "path", r.URL.Path)

		retry := int(time.Until(dec.ResetAt).Seconds())
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", formatInt(retry))
		writeJSONError(w, http.StatusTooManyRequests, dec.Message, dec.Cooldown)
		return
	}

	g.record(r, key, class, domain.EventAllowed)

	// detector de bot: observa a mensagem das classes com texto livre.
	// É só um sinal — nunca bloqueia a requisição corrente; um eventual
	// cooldown vale para as próximas.
	var input string
	if class.InspectBody && r.Method == http.MethodPost && g.opts.Detector != nil {
		input = peekMessage(r)
		if input != "" {
			verdict := g.observeSafely(key, input)
			if verdict.Bot {
				g.record(r, key, class, domain.EventBotDetected)
				g.opts.Logger.Warn("bot heuristics triggered", "reason", verdict.Reason, "class", class.Name)
				if g.opts.OnBotDetected != nil {
					if d := g.opts.OnBotDetected(key); d > 0 {
						_ = g.cooldowns.Set(r.Context(), key, d)
					}
				}
			}
		}
	}

	if class.Guidance {
		cw := newCaptureWriter()
		next.ServeHTTP(cw, r)
		g.finishGuidance(w, r, cw, key, class, input)
		return
	}

	hw := &cooldownHeaderWriter{
		ResponseWriter: w,
		onHeader: func(h http.Header) {
			g.applyCooldownHeader(r, key, h)
		},
	}
	next.ServeHTTP(hw, r)
}

// observeSafely isola a requisição de bugs nas heurísticas: um panic vira
// veredito "não é bot" (fail-open para admissão).
func (g *gateway) observeSafely(key domain.Key, text string) (v domain.BotVerdict) {
	defer func() {
		if p := recover(); p != nil {
			g.opts.Logger.Warn("bot detector panicked", "panic", p)
			v = domain.BotVerdict{}
		}
	}()
	return g.opts.Detector.Observe(key, text, time.Now())
}

func (g *gateway) record(r *http.Request, key domain.Key, class domain.Class, kind domain.EventKind) {
	if g.opts.Events == nil {
		return
	}
	_ = g.opts.Events.Record(r.Context(), domain.SecurityEvent{
		Key:    key,
		Kind:   kind,
		Class:  class.Name,
		Method: r.Method,
		Path:   r.URL.Path,
		At:     time.Now(),
	})
}

const peekLimit = 64 << 10

type readCloser struct {
	io.Reader
	io.Closer
}

// peekMessage extrai a mensagem de texto livre do corpo sem consumi-lo:
// o que foi lido é recolocado na frente do Body. Aceita JSON {"message": ...}
// ou corpo text/*.
func peekMessage(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, peekLimit))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || len(buf) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(buf, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/") {
		return strings.TrimSpace(string(buf))
	}
	return ""
}

type errorBody struct {
	Error    string `json:"error"`
	Cooldown bool   `json:"cooldown,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string, cooldown bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Cooldown: cooldown})
}
