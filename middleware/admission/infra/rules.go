package infra

import (
	"regexp"
	"strings"

	"guru-gateway/middleware/admission/domain"
)

// Regras concretas de segurança de conteúdo: keywords e regex por categoria.
//
// São deliberadamente simples (e frágeis, e específicas de idioma): o contrato
// domain.Rule existe justamente para que esse conjunto possa ser trocado por
// outro — ou por um classificador — sem tocar no filtro.

type keywordRule struct {
	cat         domain.Category
	re          *regexp.Regexp
	placeholder string
}

// newKeywordRule monta uma regra que casa qualquer um dos termos como palavra
// inteira, caso-insensitivo.
func newKeywordRule(cat domain.Category, placeholder string, terms ...string) domain.Rule {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	re := regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	return keywordRule{cat: cat, re: re, placeholder: placeholder}
}

func (r keywordRule) Category() domain.Category { return r.cat }
func (r keywordRule) Matches(text string) bool  { return r.re.MatchString(text) }
func (r keywordRule) Redact(text string) string {
	return r.re.ReplaceAllString(text, r.placeholder)
}

type patternRule struct {
	cat         domain.Category
	patterns    []*regexp.Regexp
	placeholder string
}

func newPatternRule(cat domain.Category, placeholder string, patterns ...string) domain.Rule {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return patternRule{cat: cat, patterns: res, placeholder: placeholder}
}

func (r patternRule) Category() domain.Category { return r.cat }

func (r patternRule) Matches(text string) bool {
	for _, re := range r.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (r patternRule) Redact(text string) string {
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, r.placeholder)
	}
	return text
}

// DefaultRules retorna o conjunto padrão, na ordem de avaliação:
// medical -> legal -> financial -> date -> fatalistic.
func DefaultRules() []domain.Rule {
	return []domain.Rule{
		newKeywordRule(domain.CategoryMedical, "[medical term]",
			"diagnose", "diagnosis", "illness", "disease", "cure",
			"medication", "prescription", "symptom", "symptoms",
			"treatment", "surgery", "cancer", "tumor"),
		newKeywordRule(domain.CategoryLegal, "[legal term]",
			"lawsuit", "sue", "legal action", "attorney", "lawyer",
			"court case", "custody", "divorce settlement", "contract dispute"),
		newKeywordRule(domain.CategoryFinancial, "[financial term]",
			"invest", "investment", "stocks", "shares", "crypto",
			"bitcoin", "loan", "gamble", "gambling", "bet",
			"lottery", "lottery numbers"),
		// três formatos de data de calendário: 15/08/2025, 2025-08-15,
		// "August 15th, 2025"
		newPatternRule(domain.CategoryDate, "[date]",
			`\b\d{1,2}/\d{1,2}/\d{4}\b`,
			`\b\d{4}-\d{2}-\d{2}\b`,
			`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}\b`),
		newPatternRule(domain.CategoryFatalistic, "[rephrased]",
			`(?i)\byou will (never|always)\b[^.!?\n]*`,
			`(?i)\b(nothing|no one|nobody) can (change|save|help|fix)\b[^.!?\n]*`,
			`(?i)\b(doomed|cursed|destined to fail)\b[^.!?\n]*`,
			`(?i)\bit is (certain|inevitable) that\b[^.!?\n]*`),
	}
}
