// Package application contém os casos de uso do controle de admissão:
// decisão de admissão (cooldown + janela), política de cooldown, resolução de
// classe de endpoint, heurísticas de bot e o filtro de segurança de conteúdo.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key, class) retorna uma Decision
// (allow/deny + restante + reset).
package application
