package application

import (
	"context"
	"log/slog"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// Service concentra a regra de aplicação da admissão.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// A ordem é fixa: cooldown primeiro, janela depois — uma requisição barrada
// pelo cooldown não consome orçamento da janela.
//
// Falha de store é fail-open: admitir vale mais do que derrubar todo o
// tráfego. (O filtro de conteúdo tem a política inversa; ver Filter.)
type Service struct {
	Windows   domain.WindowStore
	Cooldowns domain.CooldownStore
	Logger    *slog.Logger
}

func (s Service) Decide(ctx context.Context, key domain.Key, class domain.Class) domain.Decision {
	if s.Cooldowns != nil {
		rem, err := s.Cooldowns.Remaining(ctx, key)
		switch {
		case err != nil:
			s.log().Warn("cooldown store unavailable, failing open", "error", err)
		case rem > 0:
			return domain.Decision{
				Allowed:  false,
				Limit:    class.Max,
				ResetAt:  time.Now().Add(rem),
				Cooldown: true,
				Message:  WaitMessage(rem),
			}
		}
	}

	if s.Windows == nil {
		return domain.Decision{Allowed: true, Limit: class.Max, Remaining: class.Max}
	}

	count, resetAt, err := s.Windows.Incr(ctx, key, class.Name, class.Window)
	if err != nil {
		s.log().Warn("window store unavailable, failing open", "error", err, "class", class.Name)
		return domain.Decision{
			Allowed:   true,
			Limit:     class.Max,
			Remaining: class.Max,
			ResetAt:   time.Now().Add(class.Window),
		}
	}

	if count > int64(class.Max) {
		return domain.Decision{
			Allowed: false,
			Limit:   class.Max,
			ResetAt: resetAt,
			Message: class.Message,
		}
	}

	return domain.Decision{
		Allowed:   true,
		Limit:     class.Max,
		Remaining: class.Max - int(count),
		ResetAt:   resetAt,
	}
}

func (s Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
