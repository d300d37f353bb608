// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - MemoryWindowStore / RedisWindowStore: janela fixa por (fingerprint, classe)
//   - MemoryCooldownStore / RedisCooldownStore: marca de cooldown por fingerprint
//   - MemoryHistoryStore: histórico de mensagens limitado para o detector de bot
//   - DefaultRules: conjunto concreto de regras de segurança de conteúdo
//   - ChanPool: semáforo simples para limite de concorrência
package infra
