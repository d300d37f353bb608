package application

import (
	"testing"
	"time"

	"guru-gateway/middleware/admission/domain"
)

type fakeHistory struct {
	entries map[domain.Key][]domain.Message
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: make(map[domain.Key][]domain.Message)}
}

func (f *fakeHistory) Observe(key domain.Key, m domain.Message) []domain.Message {
	cur := f.entries[key]
	prior := append([]domain.Message(nil), cur...)
	cur = append(cur, m)
	if len(cur) > 20 {
		cur = cur[len(cur)-20:]
	}
	f.entries[key] = cur
	return prior
}

func (f *fakeHistory) Sweep(time.Duration) {}

func TestDetector_RepetitionFiresOnFourthIdenticalMessage(t *testing.T) {
	d := &Detector{History: newFakeHistory()}
	base := time.Now()

	// "hi" a cada 500ms: a 4ª tem 3 idênticas entre as anteriores
	for i := 0; i < 6; i++ {
		now := base.Add(time.Duration(i) * 500 * time.Millisecond)
		v := d.Observe("f1", "hi", now)
		switch {
		case i < 3 && v.Bot:
			t.Fatalf("call %d: expected not bot, got %q", i+1, v.Reason)
		case i >= 3 && !v.Bot:
			t.Fatalf("call %d: expected bot", i+1)
		case i >= 3 && v.Reason != "repetition" && v.Reason != "burst":
			t.Fatalf("call %d: unexpected reason %q", i+1, v.Reason)
		}
	}
}

func TestDetector_BurstFiresOnSixthRapidMessage(t *testing.T) {
	d := &Detector{History: newFakeHistory()}
	base := time.Now()

	msgs := []string{
		"tell me about my career path",
		"what does my star chart say",
		"is this a good week for travel",
		"should I focus on family now",
		"what energy surrounds me today",
		"how do I find more balance",
	}
	for i, m := range msgs {
		now := base.Add(time.Duration(i) * 500 * time.Millisecond)
		v := d.Observe("f1", m, now)
		if i < 5 {
			if v.Bot {
				t.Fatalf("call %d: expected not bot, got %q", i+1, v.Reason)
			}
			continue
		}
		if !v.Bot || v.Reason != "burst" {
			t.Fatalf("call %d: expected burst, got bot=%v reason=%q", i+1, v.Bot, v.Reason)
		}
	}
}

func TestDetector_ShortFloodAtOneSecondGaps(t *testing.T) {
	d := &Detector{History: newFakeHistory()}
	base := time.Now()

	// gap de exatamente 1s: escapa da regra de rajada (< 1s), cai na de flood
	for i := 1; i <= 11; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		v := d.Observe("f1", "m"+string(rune('a'+i)), now)
		if i < 11 {
			if v.Bot {
				t.Fatalf("call %d: expected not bot, got %q", i, v.Reason)
			}
			continue
		}
		if !v.Bot || v.Reason != "short-flood" {
			t.Fatalf("call %d: expected short-flood, got bot=%v reason=%q", i, v.Bot, v.Reason)
		}
	}
}

func TestDetector_RecordsMessageEvenOnBotVerdict(t *testing.T) {
	h := newFakeHistory()
	d := &Detector{History: h}
	base := time.Now()

	for i := 0; i < 4; i++ {
		d.Observe("f1", "hi", base.Add(time.Duration(i)*500*time.Millisecond))
	}
	if got := len(h.entries["f1"]); got != 4 {
		t.Fatalf("expected 4 recorded messages (including the bot one), got %d", got)
	}
}

func TestDetector_SlowDistinctTrafficIsNotBot(t *testing.T) {
	d := &Detector{History: newFakeHistory()}
	base := time.Now()

	msgs := []string{
		"good morning",
		"what should I meditate on",
		"thank you for the reading",
		"one more question please",
	}
	for i, m := range msgs {
		v := d.Observe("f1", m, base.Add(time.Duration(i)*30*time.Second))
		if v.Bot {
			t.Fatalf("call %d: expected not bot, got %q", i+1, v.Reason)
		}
	}
}

func TestDetector_NilHistoryNeverFlags(t *testing.T) {
	var d *Detector
	if v := d.Observe("f1", "hi", time.Now()); v.Bot {
		t.Fatalf("nil detector must not flag")
	}
}
