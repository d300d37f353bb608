package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guru-gateway/middleware/admission"
	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

func main() {
	// Exemplo: injetando o middleware direto no webserver do app (sem proxy).
	// Handlers de operação cara chamam o cooldown explicitamente.
	windows := infra.NewMemoryWindowStore()
	cooldownStore := infra.NewMemoryCooldownStore()
	history := infra.NewMemoryHistoryStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	windows.StartJanitor(ctx)
	cooldownStore.StartJanitor(ctx)
	history.StartJanitor(ctx)

	fingerprint := admission.Fingerprint(nil)
	cooldowns := application.CooldownService{Store: cooldownStore}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("The cards suggest a season of quiet growth. Trust your own pace.\n"))
	})
	mux.HandleFunc("/api/report/pdf", func(w http.ResponseWriter, r *http.Request) {
		// geração de PDF é cara: 10s de silêncio depois de cada chamada
		defer func() {
			_ = cooldowns.Set(r.Context(), fingerprint(r), 10*time.Second)
		}()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	h := http.Handler(mux)
	h = admission.Middleware(admission.Options{
		Windows:       windows,
		Cooldowns:     cooldownStore,
		FingerprintFn: fingerprint,
		Detector:      &application.Detector{History: history},
		OnBotDetected: func(domain.Key) time.Duration { return 30 * time.Second },
	})(h)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{Max: 50})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("example server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
