package llm

import (
	"hiredesk/internal/config"
	"hiredesk/internal/logging"
)

// NewProvider selects the configured provider. Without an API key the
// deterministic heuristic provider is used, which keeps the pipeline fully
// functional in development and tests.
func NewProvider(cfg *config.Config) Provider {
	logger := logging.GetGlobalLogger()

	switch cfg.LLM.Provider {
	case "claude":
		if cfg.LLM.APIKey == "" {
			logger.Warn("LLM API key not configured, falling back to heuristic provider")
			return NewHeuristicProvider()
		}
		return NewClaudeProvider(cfg)
	default:
		return NewHeuristicProvider()
	}
}
