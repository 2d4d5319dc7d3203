package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/geethika608/youtube-short-creator/internal/config"
)

// New builds the Generator selected by cfg.
func New(ctx context.Context, cfg config.TextConfig) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutS) * time.Second

	switch cfg.Provider {
	case config.TextGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.APIKey(),
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		})
	case config.TextOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey(),
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case config.TextScripted:
		script, err := LoadScript(cfg.ScriptPath)
		if err != nil {
			return nil, err
		}
		return NewScripted(script), nil
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.Provider)
	}
}
