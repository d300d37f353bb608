package admission

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/yl2chen/cidranger"

	"guru-gateway/middleware/admission/domain"
)

// FingerprintFunc deriva a chave de correlação de uma requisição.
type FingerprintFunc func(r *http.Request) domain.Key

// TrustedRanger compila a lista de CIDRs de proxies confiáveis.
// Lista vazia retorna nil (X-Forwarded-For é ignorado).
func TrustedRanger(cidrs []string) (cidranger.Ranger, error) {
	if len(cidrs) == 0 {
		return nil, nil
	}
	rng := cidranger.NewPCTrieRanger()
	for _, c := range cidrs {
		_, ipNet, err := net.ParseCIDR(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy cidr %q: %w", c, err)
		}
		if err := rng.Insert(cidranger.NewBasicRangerEntry(*ipNet)); err != nil {
			return nil, fmt.Errorf("insert trusted proxy cidr %q: %w", c, err)
		}
	}
	return rng, nil
}

// Fingerprint deriva a chave determinística de
// (endereço do cliente, User-Agent, Accept-Language).
//
// Campos ausentes degradam para o literal "unknown" em vez de falhar —
// mesma tupla, mesma chave, sempre. A chave é opaca (sha1 hex) e serve só
// como índice dos stores; não é identidade.
//
// X-Forwarded-For só é honrado quando o peer direto está dentro de `trusted`
// (senão qualquer cliente forjaria o próprio fingerprint).
func Fingerprint(trusted cidranger.Ranger) FingerprintFunc {
	return func(r *http.Request) domain.Key {
		addr := clientAddr(r, trusted)

		ua := r.Header.Get("User-Agent")
		if ua == "" {
			ua = "unknown"
		}
		lang := r.Header.Get("Accept-Language")
		if lang == "" {
			lang = "unknown"
		}

		// ordem dos campos e case são fixos: determinismo é requisito
		sum := sha1.Sum([]byte(addr + "|" + ua + "|" + lang))
		return domain.Key(hex.EncodeToString(sum[:]))
	}
}

func clientAddr(r *http.Request, trusted cidranger.Ranger) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil || host == "" {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		return "unknown"
	}

	if trusted != nil {
		if ip := net.ParseIP(host); ip != nil {
			if ok, err := trusted.Contains(ip); err == nil && ok {
				// pega o primeiro IP do X-Forwarded-For (cliente original)
				if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
					first := strings.TrimSpace(strings.Split(xff, ",")[0])
					if first != "" {
						return first
					}
				}
			}
		}
	}
	return host
}
