package application

import (
	"time"

	"guru-gateway/middleware/admission/domain"
)

// Limiares das heurísticas de bot.
const (
	burstWindow   = 60 * time.Second
	burstCount    = 5 // mais que isso na janela, com gap < burstGap, é bot
	burstGap      = 1 * time.Second
	repeatLookback = 5
	repeatCount    = 3
	shortLen       = 10
	shortGap       = 2 * time.Second
	shortWindow    = 10 * time.Second
	shortCount     = 10
)

// Detector aplica as heurísticas de automação sobre o fluxo recente de
// mensagens de um fingerprint.
//
// Ordem de avaliação (primeira que casar vence): rajada -> repetição ->
// flood de mensagens curtas. A mensagem é registrada no histórico em TODA
// chamada, antes da avaliação; as heurísticas olham as entradas ANTERIORES à
// mensagem corrente (assim a regra de repetição dispara na 4ª idêntica, não
// na 3ª).
type Detector struct {
	History domain.HistoryStore
}

func (d *Detector) Observe(key domain.Key, text string, now time.Time) domain.BotVerdict {
	if d == nil || d.History == nil {
		return domain.BotVerdict{}
	}

	prior := d.History.Observe(key, domain.Message{Text: text, At: now})

	gap := time.Duration(-1)
	if len(prior) > 0 {
		gap = now.Sub(prior[len(prior)-1].At)
	}

	// 1) rajada: mais de burstCount mensagens nos últimos 60s e a atual veio
	// a menos de 1s da anterior
	recent := 1 // inclui a mensagem corrente
	for _, p := range prior {
		if now.Sub(p.At) <= burstWindow {
			recent++
		}
	}
	if recent > burstCount && gap >= 0 && gap < burstGap {
		return domain.BotVerdict{Bot: true, Reason: "burst"}
	}

	// 2) repetição: entre as últimas 5 registradas, 3+ idênticas à corrente
	start := len(prior) - repeatLookback
	if start < 0 {
		start = 0
	}
	identical := 0
	for _, p := range prior[start:] {
		if p.Text == text {
			identical++
		}
	}
	if identical >= repeatCount {
		return domain.BotVerdict{Bot: true, Reason: "repetition"}
	}

	// 3) flood de curtas: mensagem < 10 chars, gap < 2s e mais de 10 curtas
	// nos últimos 10s
	if len(text) < shortLen && gap >= 0 && gap < shortGap {
		short := 1
		for _, p := range prior {
			if now.Sub(p.At) <= shortWindow && len(p.Text) < shortLen {
				short++
			}
		}
		if short > shortCount {
			return domain.BotVerdict{Bot: true, Reason: "short-flood"}
		}
	}

	return domain.BotVerdict{}
}
