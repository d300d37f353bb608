// Package admission fornece os adapters HTTP (net/http) do pipeline de
// admissão e segurança de conteúdo do app de orientação espiritual.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão de admissão, cooldown, heurísticas
//     de bot, filtro de segurança) sem net/http
//   - infra: implementações concretas (stores em memória e Redis, regras,
//     semáforo), detalhes de infraestrutura
//   - admission (este pacote): middlewares HTTP + fingerprint + tradução
//     para status/headers + sanitização da resposta
//
// Fluxo por requisição:
//
//  1. Calcula o fingerprint do chamador (IP/User-Agent/Accept-Language)
//  2. Checa cooldown; se ativo, responde 429 com a mensagem de espera
//  3. Checa a janela fixa da classe do endpoint; se estourou, responde 429
//     com os headers X-RateLimit-*
//  4. Observa a mensagem no detector de bot (sinal, nunca bloqueia sozinho)
//  5. Chama o próximo handler (ex: reverse proxy para o app)
//  6. Em classes de orientação, passa o texto gerado pelo filtro de
//     segurança antes de devolver ao usuário
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como LIMITS_FILE, REDIS_ADDR, SHIELD_RPS e CONCURRENCY_MAX.
package admission
