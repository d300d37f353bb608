package application

import (
	"strings"
	"testing"

	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

func newTestFilter() *Filter {
	return NewFilter(infra.DefaultRules())
}

func TestFilter_MedicalAdviceRedacted(t *testing.T) {
	v := newTestFilter().Evaluate("Can you diagnose my illness?", domain.StateNeutral)
	if v.Safe {
		t.Fatalf("expected unsafe verdict")
	}
	if v.Category != domain.CategoryMedical {
		t.Fatalf("expected medical category, got %q", v.Category)
	}
	if !strings.Contains(v.Sanitized, "[medical term]") {
		t.Fatalf("expected redaction placeholder, got %q", v.Sanitized)
	}
	if strings.Contains(v.Sanitized, "diagnose") || strings.Contains(v.Sanitized, "illness") {
		t.Fatalf("expected terms removed, got %q", v.Sanitized)
	}
}

func TestFilter_ExactDateRedacted(t *testing.T) {
	v := newTestFilter().Evaluate("Will I get married on 15/08/2025?", domain.StateNeutral)
	if v.Safe {
		t.Fatalf("expected unsafe verdict")
	}
	if v.Category != domain.CategoryDate {
		t.Fatalf("expected date category, got %q", v.Category)
	}
	if strings.Contains(v.Sanitized, "15/08/2025") {
		t.Fatalf("expected date removed, got %q", v.Sanitized)
	}
	if !strings.Contains(v.Sanitized, "[date]") {
		t.Fatalf("expected date placeholder, got %q", v.Sanitized)
	}
}

func TestFilter_CleanNeutralTextUnchanged(t *testing.T) {
	text := "Everything looks calm and positive for you"
	v := newTestFilter().Evaluate(text, domain.StateNeutral)
	if !v.Safe {
		t.Fatalf("expected safe verdict")
	}
	if v.Category != "" {
		t.Fatalf("expected no category, got %q", v.Category)
	}
	if v.Sanitized != text {
		t.Fatalf("expected text unchanged, got %q", v.Sanitized)
	}
}

func TestFilter_FirstCategoryWins(t *testing.T) {
	// medical vem antes de financial na ordem fixa; só a redação dele aplica
	v := newTestFilter().Evaluate("Maybe invest after we cure this?", domain.StateNeutral)
	if v.Category != domain.CategoryMedical {
		t.Fatalf("expected medical to win, got %q", v.Category)
	}
	if !strings.Contains(v.Sanitized, "[medical term]") {
		t.Fatalf("expected medical redaction, got %q", v.Sanitized)
	}
	if !strings.Contains(v.Sanitized, "invest") {
		t.Fatalf("expected financial term untouched, got %q", v.Sanitized)
	}
}

func TestFilter_DistressedTriggeredSoftensInsteadOfBlocking(t *testing.T) {
	v := newTestFilter().Evaluate("Your illness can be treated soon.", domain.StateDistressed)
	if !v.Safe {
		t.Fatalf("expected safe verdict for distressed user")
	}
	if v.Category != domain.CategoryMedical {
		t.Fatalf("expected medical category, got %q", v.Category)
	}
	if !strings.Contains(v.Sanitized, "[medical term]") {
		t.Fatalf("expected redaction applied, got %q", v.Sanitized)
	}
	if !strings.Contains(v.Sanitized, "for reflection only") {
		t.Fatalf("expected disclaimer appended, got %q", v.Sanitized)
	}
}

func TestFilter_DistressedCleanGetsSupportiveTrailer(t *testing.T) {
	text := "The path ahead is open for you."
	v := newTestFilter().Evaluate(text, domain.StateDistressed)
	if !v.Safe {
		t.Fatalf("expected safe verdict")
	}
	if !strings.HasPrefix(v.Sanitized, text) {
		t.Fatalf("expected original text preserved, got %q", v.Sanitized)
	}
	if !strings.Contains(v.Sanitized, "deep breath") {
		t.Fatalf("expected trailer appended, got %q", v.Sanitized)
	}
}

func TestFilter_FatalisticStatementRephrased(t *testing.T) {
	v := newTestFilter().Evaluate("You will never find true love.", domain.StateNeutral)
	if v.Safe {
		t.Fatalf("expected unsafe verdict")
	}
	if v.Category != domain.CategoryFatalistic {
		t.Fatalf("expected fatalistic category, got %q", v.Category)
	}
	if !strings.Contains(v.Sanitized, "[rephrased]") {
		t.Fatalf("expected rephrase placeholder, got %q", v.Sanitized)
	}
	if strings.Contains(v.Sanitized, "never") {
		t.Fatalf("expected fatalistic phrase removed, got %q", v.Sanitized)
	}
}

func TestFilter_EmptyInputIsUnsafeWithoutSanitized(t *testing.T) {
	for _, text := range []string{"", "   \n"} {
		v := newTestFilter().Evaluate(text, domain.StateNeutral)
		if v.Safe {
			t.Fatalf("expected unsafe verdict for %q", text)
		}
		if v.Sanitized != "" {
			t.Fatalf("expected no sanitized text for %q, got %q", text, v.Sanitized)
		}
	}
}

func TestClassifyEmotion(t *testing.T) {
	cases := []struct {
		input string
		want  domain.EmotionalState
	}{
		{"I feel hopeless about everything", domain.StateDistressed},
		{"I'm worried about my job", domain.StateConcerned},
		{"I am grateful for this day", domain.StateCalm},
		{"tell me about tomorrow", domain.StateNeutral},
		{"", domain.StateNeutral},
	}
	for _, c := range cases {
		if got := ClassifyEmotion(c.input); got != c.want {
			t.Fatalf("ClassifyEmotion(%q): expected %q, got %q", c.input, c.want, got)
		}
	}
}
