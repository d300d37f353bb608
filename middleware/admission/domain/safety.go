package domain

// Category é uma categoria de conteúdo não permitido em texto gerado.
type Category string

const (
	CategoryMedical    Category = "medical"
	CategoryLegal      Category = "legal"
	CategoryFinancial  Category = "financial"
	CategoryDate       Category = "date"
	CategoryFatalistic Category = "fatalistic"
)

// Rule é um predicado nomeado sobre texto livre com uma estratégia de redação
// associada.
//
// Regras são stateless e avaliadas do zero a cada texto. A abstração existe
// para que o conjunto (keywords/regex hoje) possa ser trocado ou versionado
// sem mexer na orquestração.
type Rule interface {
	Category() Category
	Matches(text string) bool
	// Redact substitui os trechos casados por um placeholder entre colchetes,
	// preservando o texto ao redor.
	Redact(text string) string
}

// EmotionalState é o estado emocional inferido do texto de ENTRADA do
// usuário; modula o desfecho do filtro de segurança.
type EmotionalState string

const (
	StateCalm       EmotionalState = "calm"
	StateConcerned  EmotionalState = "concerned"
	StateDistressed EmotionalState = "distressed"
	StateNeutral    EmotionalState = "neutral"
)

// Verdict é o resultado de rodar todas as regras contra um texto.
// Nunca é persistido; o chamador consome imediatamente.
type Verdict struct {
	Safe bool
	// Category é a primeira categoria que disparou ("" quando nenhuma).
	Category Category
	// Sanitized é o texto a entregar. Vazio quando Safe=false e nenhuma
	// redação pôde ser produzida; nesse caso o chamador substitui por uma
	// mensagem fixa própria.
	Sanitized string
}
