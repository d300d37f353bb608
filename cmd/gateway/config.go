package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
)

type config struct {
	listenAddr  string
	upstreamURL string
	logLevel    string

	limitsFile     string
	trustedProxies []string

	botCooldown time.Duration

	shieldRPS   float64
	shieldBurst int

	concurrencyMax     int
	concurrencyTimeout time.Duration

	redisAddr     string
	redisPassword string
	redisDB       int

	eventsEnabled   bool
	eventsPrefix    string
	eventsTTL       time.Duration
	eventsBucket    string
	eventsTrackKeys bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.limitsFile = os.Getenv("LIMITS_FILE")
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.trustedProxies = append(cfg.trustedProxies, c)
			}
		}
	}

	cfg.botCooldown = getenvDurationDefault("BOT_COOLDOWN", 30*time.Second)

	cfg.shieldRPS = getenvFloatDefault("SHIELD_RPS", 0)
	cfg.shieldBurst = getenvIntDefault("SHIELD_BURST", 0)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.redisAddr = getenvDefault("REDIS_ADDR", "")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.eventsEnabled = getenvBoolDefault("EVENTS_ENABLED", true)
	cfg.eventsPrefix = getenvDefault("EVENTS_PREFIX", "admission:events")
	cfg.eventsTTL = getenvDurationDefault("EVENTS_TTL", 24*time.Hour)
	cfg.eventsBucket = getenvDefault("EVENTS_BUCKET", "minute")
	cfg.eventsTrackKeys = getenvBoolDefault("EVENTS_TRACK_KEYS", false)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

// Arquivo YAML de limites por classe de endpoint. Campos ausentes caem nos
// defaults embutidos (tabela de application.DefaultClasses).
type limitsFile struct {
	Classes []classEntry `yaml:"classes"`
	Default *classEntry  `yaml:"default"`
}

type classEntry struct {
	Name        string   `yaml:"name"`
	Paths       []string `yaml:"paths"`
	Prefixes    []string `yaml:"prefixes"`
	Window      string   `yaml:"window"`
	MaxRequests int      `yaml:"max_requests"`
	Message     string   `yaml:"message"`
	Guidance    bool     `yaml:"guidance"`
	InspectBody bool     `yaml:"inspect_body"`
}

func (e classEntry) toClass() (domain.Class, error) {
	if e.Name == "" {
		return domain.Class{}, errors.New("class without name")
	}
	w, err := time.ParseDuration(e.Window)
	if err != nil {
		return domain.Class{}, fmt.Errorf("class %q: invalid window %q: %w", e.Name, e.Window, err)
	}
	if e.MaxRequests <= 0 {
		return domain.Class{}, fmt.Errorf("class %q: max_requests must be > 0", e.Name)
	}
	msg := e.Message
	if msg == "" {
		msg = "Too many requests. Please slow down."
	}
	return domain.Class{
		Name:        e.Name,
		Paths:       e.Paths,
		Prefixes:    e.Prefixes,
		Window:      w,
		Max:         e.MaxRequests,
		Message:     msg,
		Guidance:    e.Guidance,
		InspectBody: e.InspectBody,
	}, nil
}

// loadLimits lê a tabela de classes. Path vazio retorna os defaults.
func loadLimits(path string) ([]domain.Class, domain.Class, error) {
	classes := application.DefaultClasses()
	fallback := application.DefaultFallback()
	if path == "" {
		return classes, fallback, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Class{}, fmt.Errorf("read limits file: %w", err)
	}
	var lf limitsFile
	if err := yaml.Unmarshal(raw, &lf); err != nil {
		return nil, domain.Class{}, fmt.Errorf("parse limits file: %w", err)
	}

	if len(lf.Classes) > 0 {
		classes = classes[:0]
		for _, e := range lf.Classes {
			c, err := e.toClass()
			if err != nil {
				return nil, domain.Class{}, err
			}
			classes = append(classes, c)
		}
	}
	if lf.Default != nil {
		d := *lf.Default
		if d.Name == "" {
			d.Name = "default"
		}
		c, err := d.toClass()
		if err != nil {
			return nil, domain.Class{}, err
		}
		fallback = c
	}
	return classes, fallback, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
