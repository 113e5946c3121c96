package main

import "os"

// config is read entirely from the environment, following the teacher's
// preference for zero-ceremony examples over a flag/config-file layer for
// its demo binaries (§6 "Environment": APP_ENV/policy path are the core's
// only environment-shaped configuration inputs).
type config struct {
	// AppEnv influences nothing in the core beyond the health-probe echo
	// (§6 "Environment").
	AppEnv string

	// GraphSnapshotDir, if set, makes the GraphStore durable (snapshot +
	// WAL). Empty means in-memory only.
	GraphSnapshotDir string

	// StateStoreDSN selects the WorkflowStateStore backend:
	//   ""                    -> in-memory (tests, quick demos)
	//   "sqlite:<path>"       -> SQLite (default durable backend)
	//   "mysql:<dsn>"         -> MySQL
	StateStoreDSN string

	// BudgetPolicyPath, if set, loads hot-reloadable role envelopes from a
	// viper-readable file instead of the built-in defaults.
	BudgetPolicyPath string

	// LLMProvider selects the concrete llm.LLM adapter: "anthropic",
	// "openai", "google", or "" (mock, used when no credentials are
	// configured).
	LLMProvider   string
	LLMAPIKey     string
	LLMModelName  string

	// MaxParallel overrides the executor's default bounded-parallelism
	// (§4.5 default 3).
	MaxParallel int
}

func loadConfig() config {
	return config{
		AppEnv:           getenv("APP_ENV", "development"),
		GraphSnapshotDir: os.Getenv("GRAPH_SNAPSHOT_DIR"),
		StateStoreDSN:    os.Getenv("STATE_STORE_DSN"),
		BudgetPolicyPath: os.Getenv("BUDGET_POLICY_PATH"),
		LLMProvider:      os.Getenv("LLM_PROVIDER"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModelName:     os.Getenv("LLM_MODEL_NAME"),
		MaxParallel:      getenvInt("MAX_PARALLEL", 3),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}
