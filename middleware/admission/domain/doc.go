// Package domain define contratos e tipos de domínio para o controle de
// admissão (fingerprint, janela de rate limit, cooldown, detecção de bot e
// filtro de segurança de conteúdo).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (memória, Redis, etc).
package domain
