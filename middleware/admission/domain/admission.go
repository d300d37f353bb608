package domain

// Camada de domínio do controle de admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Key é o fingerprint do chamador: uma chave de correlação best-effort,
// derivada de metadados não autenticados da requisição.
//
// Não é prova de identidade. Colisões entre usuários atrás do mesmo NAT/proxy
// são esperadas e aceitáveis.
type Key string

// Class descreve uma classe de endpoint com seu orçamento de janela fixa.
//
// A resolução path -> classe é: match exato primeiro, depois o prefixo mais
// longo, depois a classe default.
type Class struct {
	Name     string
	Paths    []string
	Prefixes []string

	Window  time.Duration
	Max     int
	Message string

	// Guidance marca classes cuja resposta é texto gerado para o usuário
	// final e por isso passa pelo filtro de segurança de conteúdo.
	Guidance bool

	// InspectBody marca classes que aceitam texto livre no corpo; o detector
	// de bot observa essas mensagens.
	InspectBody bool
}

// Decision é o resultado de uma decisão de admissão para uma requisição.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt é o instante em que a janela atual expira (ou o cooldown
	// termina, quando Cooldown=true).
	ResetAt time.Time
	// Cooldown indica que a negação veio do cooldown, não da janela.
	Cooldown bool
	// Message é a mensagem voltada ao usuário quando Allowed=false.
	Message string
}

// WindowStore é a estratégia de contagem por (fingerprint, classe) em janela
// fixa.
//
// Incr incrementa o contador da janela corrente e retorna o valor pós
// incremento e o instante de reset. Se a janela expirou, a implementação
// reinicia atomicamente (count=1, novo reset). Dois Incr concorrentes nunca
// podem observar o mesmo valor (sem lost updates).
//
// Erros devem ser tratados pelo chamador como fail-open: admitir a requisição
// vale mais do que derrubar todo o tráfego.
type WindowStore interface {
	Incr(ctx context.Context, key Key, class string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// CooldownStore guarda a marca de silêncio obrigatório por fingerprint.
//
// Set sobrescreve a expiração (cooldowns não acumulam). Remaining retorna 0
// quando não há cooldown ativo. Erros também são fail-open.
type CooldownStore interface {
	Remaining(ctx context.Context, key Key) (time.Duration, error)
	Set(ctx context.Context, key Key, d time.Duration) error
}
