package admission

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFingerprint_DeterministicForSameTuple(t *testing.T) {
	fn := Fingerprint(nil)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	r1.Header.Set("User-Agent", "Mozilla/5.0")
	r1.Header.Set("Accept-Language", "pt-BR")

	r2 := httptest.NewRequest(http.MethodGet, "http://example/outro", nil)
	r2.RemoteAddr = "10.0.0.1:9999" // porta diferente não muda o host
	r2.Header.Set("User-Agent", "Mozilla/5.0")
	r2.Header.Set("Accept-Language", "pt-BR")

	if fn(r1) != fn(r2) {
		t.Fatalf("expected same fingerprint for same tuple")
	}
}

func TestFingerprint_DifferentUserAgentChangesKey(t *testing.T) {
	fn := Fingerprint(nil)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	r1.Header.Set("User-Agent", "Mozilla/5.0")

	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r2.RemoteAddr = "10.0.0.1:1234"
	r2.Header.Set("User-Agent", "curl/8.0")

	if fn(r1) == fn(r2) {
		t.Fatalf("expected different fingerprints for different user agents")
	}
}

func TestFingerprint_MissingFieldsDegradeToUnknown(t *testing.T) {
	fn := Fingerprint(nil)

	r1 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	r1.Header.Del("User-Agent")

	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r2.RemoteAddr = "10.0.0.1:1234"
	r2.Header.Set("User-Agent", "unknown")
	r2.Header.Set("Accept-Language", "unknown")

	if fn(r1) != fn(r2) {
		t.Fatalf("expected missing headers to degrade to the literal unknown")
	}
}

func TestFingerprint_XFFHonoredOnlyFromTrustedProxy(t *testing.T) {
	trusted, err := TrustedRanger([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := Fingerprint(trusted)

	// peer confiável: vale o primeiro IP do X-Forwarded-For
	viaProxy := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	viaProxy.RemoteAddr = "10.0.0.9:5555"
	viaProxy.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	direct := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	direct.RemoteAddr = "1.2.3.4:7777"

	if fn(viaProxy) != fn(direct) {
		t.Fatalf("expected proxied request to resolve to original client")
	}

	// peer fora da lista: X-Forwarded-For é ignorado
	spoofed := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	spoofed.RemoteAddr = "203.0.113.7:4444"
	spoofed.Header.Set("X-Forwarded-For", "1.2.3.4")

	plain := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	plain.RemoteAddr = "203.0.113.7:4444"

	if fn(spoofed) != fn(plain) {
		t.Fatalf("expected spoofed XFF from untrusted peer to be ignored")
	}
}

func TestTrustedRanger_RejectsInvalidCIDR(t *testing.T) {
	if _, err := TrustedRanger([]string{"not-a-cidr"}); err == nil {
		t.Fatalf("expected error for invalid cidr")
	}
}
