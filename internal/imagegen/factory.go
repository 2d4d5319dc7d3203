package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geethika608/youtube-short-creator/internal/config"
)

// New builds the Generator selected by cfg.
func New(ctx context.Context, cfg config.ImageConfig, logger *slog.Logger) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutS) * time.Second

	switch cfg.Provider {
	case config.ImageImagen:
		return NewImagen(ctx, ImagenConfig{
			APIKey:         cfg.APIKey(),
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			AspectRatio:    cfg.AspectRatio,
			ImagesPerScene: cfg.ImagesPerScene,
			Timeout:        timeout,
		})
	case config.ImagePollinations:
		return NewPollinations(PollinationsConfig{
			BaseURL:        cfg.BaseURL,
			Width:          cfg.Width,
			Height:         cfg.Height,
			ImagesPerScene: cfg.ImagesPerScene,
			MaxAttempts:    cfg.MaxAttempts,
			Timeout:        timeout,
			Logger:         logger,
		}), nil
	case config.ImagePlaceholder:
		return NewPlaceholder(cfg.Width, cfg.Height, cfg.ImagesPerScene), nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Provider)
	}
}
