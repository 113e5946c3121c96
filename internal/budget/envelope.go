package budget

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Role is one of the default envelope tiers (§4.3 Role envelopes).
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
	RoleGuest  Role = "guest"
)

// Envelope is the per-role resource budget (§4.3).
type Envelope struct {
	MaxTotalTokens   int
	MaxTotalCostUSD  float64
	MaxTimeS         float64
	MaxParallelTasks int
}

// defaultEnvelopes are used until/unless a policy config overrides them,
// ordered admin (most permissive) to guest (least), per §4.3.
var defaultEnvelopes = map[Role]Envelope{
	RoleAdmin:  {MaxTotalTokens: 200_000, MaxTotalCostUSD: 50.0, MaxTimeS: 1800, MaxParallelTasks: 10},
	RolePlayer: {MaxTotalTokens: 50_000, MaxTotalCostUSD: 5.0, MaxTimeS: 300, MaxParallelTasks: 3},
	RoleGuest:  {MaxTotalTokens: 10_000, MaxTotalCostUSD: 0.5, MaxTimeS: 120, MaxParallelTasks: 1},
}

// EnvelopeSource reads role envelopes at enforcement time rather than
// caching them per plan (§4.3: "the selector reads envelopes at
// enforcement time (not cached per plan)"). PolicyConfig is the
// viper-backed, hot-reloadable implementation; a static map is used in
// tests.
type EnvelopeSource interface {
	Envelope(role Role) Envelope
}

// StaticEnvelopes is the simplest EnvelopeSource, useful for tests and as
// the fallback when no policy file is configured.
type StaticEnvelopes map[Role]Envelope

func (s StaticEnvelopes) Envelope(role Role) Envelope {
	if e, ok := s[role]; ok {
		return e
	}
	return defaultEnvelopes[RoleGuest]
}

// NewDefaultEnvelopes returns the built-in admin/player/guest tiers.
func NewDefaultEnvelopes() StaticEnvelopes {
	out := make(StaticEnvelopes, len(defaultEnvelopes))
	for k, v := range defaultEnvelopes {
		out[k] = v
	}
	return out
}

// PolicyConfig loads role envelopes from a YAML/JSON/TOML file via viper
// and hot-reloads them on change, grounded on evalgo-org-eve's
// cli/root.go viper.WatchConfig wiring. Reads are lock-protected so a
// reload mid-enforcement never races a concurrent Envelope() call.
type PolicyConfig struct {
	v  *viper.Viper
	mu sync.RWMutex
	cache map[Role]Envelope
}

// LoadPolicyConfig reads role envelopes from path (BUDGET_POLICY_PATH),
// falling back to the built-in defaults for any role not present in the
// file, and watches the file for live edits.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	pc := &PolicyConfig{v: v, cache: NewDefaultEnvelopes()}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("budget: reading policy config %q: %w", path, err)
	}
	pc.reload()

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("path", path).Str("op", e.Op.String()).Msg("budget: policy config changed, reloading envelopes")
		pc.reload()
	})
	v.WatchConfig()

	return pc, nil
}

func (pc *PolicyConfig) reload() {
	roles := map[Role]string{RoleAdmin: "admin", RolePlayer: "player", RoleGuest: "guest"}
	next := NewDefaultEnvelopes()

	for role, key := range roles {
		prefix := "roles." + key + "."
		if !pc.v.IsSet("roles." + key) {
			continue
		}
		env := next[role]
		if pc.v.IsSet(prefix + "max_total_tokens") {
			env.MaxTotalTokens = pc.v.GetInt(prefix + "max_total_tokens")
		}
		if pc.v.IsSet(prefix + "max_total_cost_usd") {
			env.MaxTotalCostUSD = pc.v.GetFloat64(prefix + "max_total_cost_usd")
		}
		if pc.v.IsSet(prefix + "max_time_s") {
			env.MaxTimeS = pc.v.GetFloat64(prefix + "max_time_s")
		}
		if pc.v.IsSet(prefix + "max_parallel_tasks") {
			env.MaxParallelTasks = pc.v.GetInt(prefix + "max_parallel_tasks")
		}
		next[role] = env
	}

	pc.mu.Lock()
	pc.cache = next
	pc.mu.Unlock()
}

// Envelope returns the current envelope for role, reflecting the most
// recent hot-reload.
func (pc *PolicyConfig) Envelope(role Role) Envelope {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.cache.Envelope(role)
}
