package application

import (
	"context"
	"fmt"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// CooldownService expõe o cooldown para handlers: operações de custo alto
// (análise de frame de vídeo, transcrição de voz, geração de PDF) chamam Set
// explicitamente após executarem — a duração é escolha do endpoint, não uma
// política global.
type CooldownService struct {
	Store domain.CooldownStore
}

// Check é read-only em relação à admissão: não inicia cooldown.
func (s CooldownService) Check(ctx context.Context, key domain.Key) (bool, time.Duration) {
	if s.Store == nil {
		return false, 0
	}
	rem, err := s.Store.Remaining(ctx, key)
	if err != nil || rem <= 0 {
		// fail-open: store indisponível conta como "sem cooldown"
		return false, 0
	}
	return true, rem
}

// Set sobrescreve a expiração; cooldowns não acumulam.
func (s CooldownService) Set(ctx context.Context, key domain.Key, d time.Duration) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Set(ctx, key, d)
}

// WaitMessage formata a mensagem de espera voltada ao usuário: segundos
// quando resta menos de um minuto, minutos inteiros caso contrário.
func WaitMessage(rem time.Duration) string {
	if rem < time.Minute {
		secs := int((rem + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		if secs == 1 {
			return "Please wait 1 second before asking again."
		}
		return fmt.Sprintf("Please wait %d seconds before asking again.", secs)
	}
	mins := int(rem / time.Minute)
	if mins == 1 {
		return "Please wait 1 minute before asking again."
	}
	return fmt.Sprintf("Please wait %d minutes before asking again.", mins)
}
