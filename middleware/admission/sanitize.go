package admission

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
)

// Caminho de resposta: classes de orientação têm o corpo capturado e passado
// pelo filtro de segurança antes de chegar ao usuário; as demais só têm o
// header X-Set-Cooldown interceptado.

// CooldownHeader é o header de resposta com que o upstream concede um
// cooldown ao fingerprint (valor em milissegundos). O gateway aplica e
// remove o header antes de responder — é assim que "o handler chama Set"
// funciona na topologia de proxy.
const CooldownHeader = "X-Set-Cooldown"

// captureWriter acumula a resposta inteira do handler para pós-processamento.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header)}
}

func (w *captureWriter) Header() http.Header { return w.header }

func (w *captureWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.buf.Write(b)
}

// cooldownHeaderWriter repassa a resposta direto, só espiando os headers no
// primeiro WriteHeader/Write.
type cooldownHeaderWriter struct {
	http.ResponseWriter
	onHeader func(http.Header)
	done     bool
}

func (w *cooldownHeaderWriter) WriteHeader(code int) {
	if !w.done {
		w.done = true
		w.onHeader(w.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cooldownHeaderWriter) Write(b []byte) (int, error) {
	if !w.done {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (g *gateway) applyCooldownHeader(r *http.Request, key domain.Key, h http.Header) {
	v := h.Get(CooldownHeader)
	if v == "" {
		return
	}
	h.Del(CooldownHeader)
	ms, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || ms <= 0 {
		return
	}
	_ = g.cooldowns.Set(r.Context(), key, time.Duration(ms)*time.Millisecond)
}

// finishGuidance fecha o caminho de resposta das classes de orientação:
// aplica o header de cooldown, sanitiza o texto gerado e entrega com
// Content-Length recalculado.
func (g *gateway) finishGuidance(w http.ResponseWriter, r *http.Request, cw *captureWriter, key domain.Key, class domain.Class, input string) {
	g.applyCooldownHeader(r, key, cw.header)

	status := cw.status
	if status == 0 {
		status = http.StatusOK
	}
	body := cw.buf.Bytes()

	// só texto passa pelo filtro; binário (PDF pronto, etc.) segue intocado
	ct := cw.header.Get("Content-Type")
	if status == http.StatusOK && (ct == "" || strings.HasPrefix(ct, "text/")) {
		state := application.ClassifyEmotion(input)
		verdict := g.evaluateSafely(string(body), state)

		out := verdict.Sanitized
		if !verdict.Safe && out == "" {
			out = application.FallbackText
		}
		if verdict.Category != "" || !verdict.Safe {
			g.record(r, key, class, domain.EventSanitized)
			g.opts.Logger.Info("guidance sanitized", "category", string(verdict.Category), "class", class.Name)
		}
		body = []byte(out)
	}

	h := w.Header()
	for k, vv := range cw.header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// evaluateSafely isola a resposta de bugs nas regras: um panic vira verdict
// unsafe (fail-closed para conteúdo — texto não sanitizado nunca passa).
func (g *gateway) evaluateSafely(text string, state domain.EmotionalState) (v domain.Verdict) {
	defer func() {
		if p := recover(); p != nil {
			g.opts.Logger.Warn("safety filter panicked", "panic", p)
			v = domain.Verdict{Safe: false}
		}
	}()
	return g.opts.Filter.Evaluate(text, state)
}
