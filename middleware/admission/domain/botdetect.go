package domain

import "time"

// Message é uma entrada do histórico de mensagens de um fingerprint.
type Message struct {
	Text string
	At   time.Time
}

// BotVerdict é o sinal emitido pelo detector heurístico.
//
// O detector nunca rejeita uma requisição por conta própria; quem consome o
// sinal (logging, política de cooldown) decide o que fazer.
type BotVerdict struct {
	Bot    bool
	Reason string
}

// HistoryStore guarda o histórico recente de mensagens por fingerprint,
// limitado às últimas 20 entradas.
//
// Observe registra a mensagem e retorna uma cópia das entradas ANTERIORES a
// ela (a mensagem é registrada em toda chamada, inclusive quando o veredito
// vai ser "bot"). Sweep remove entradas mais antigas que o horizonte.
type HistoryStore interface {
	Observe(key Key, m Message) (prior []Message)
	Sweep(horizon time.Duration)
}
