package main

import (
	"fmt"
	"net/http"
)

// Upstream burro para validar o gateway na mão: devolve texto de orientação
// com frases que o filtro DEVE redigir, e concede cooldown via header.
func main() {
	http.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "You will never find peace until 15/08/2025. Maybe invest in crypto?\n")
		fmt.Println("Log: alguém acessou /api/chat")
	})
	http.HandleFunc("/api/report/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Set-Cooldown", "10000")
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4\n")
	})
	fmt.Println("Servidor rodando em http://localhost:8081")
	err := http.ListenAndServe(":8081", nil)
	if err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
