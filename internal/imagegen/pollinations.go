package imagegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultPollinationsURL is the public Pollinations image endpoint.
const DefaultPollinationsURL = "https://image.pollinations.ai"

// minImageBytes rejects tiny bodies, which are error pages rather than images.
const minImageBytes = 100

// PollinationsConfig configures the Pollinations backend.
type PollinationsConfig struct {
	BaseURL        string
	Model          string
	Width          int
	Height         int
	ImagesPerScene int
	MaxAttempts    int
	Timeout        time.Duration
	Logger         *slog.Logger
}

// PollinationsGenerator fetches images from Pollinations.ai (no key needed).
type PollinationsGenerator struct {
	httpClient *http.Client
	config     PollinationsConfig
	logger     *slog.Logger
	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPollinations creates a new fetcher
func NewPollinations(config PollinationsConfig) *PollinationsGenerator {
	if config.BaseURL == "" {
		config.BaseURL = DefaultPollinationsURL
	}
	if config.Model == "" {
		config.Model = "flux"
	}
	if config.ImagesPerScene <= 0 {
		config.ImagesPerScene = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PollinationsGenerator{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Generate implements Generator.
func (p *PollinationsGenerator) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("pollinations: empty prompt")
	}

	seed := promptSeed(prompt)
	images := make([][]byte, 0, p.config.ImagesPerScene)
	for i := 0; i < p.config.ImagesPerScene; i++ {
		data, err := p.fetchWithRetry(ctx, p.imageURL(prompt, seed+uint32(i)))
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	return images, nil
}

func (p *PollinationsGenerator) imageURL(prompt string, seed uint32) string {
	base := strings.TrimRight(p.config.BaseURL, "/")
	return fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&nologo=true&model=%s&seed=%d",
		base, url.PathEscape(prompt), p.config.Width, p.config.Height, url.QueryEscape(p.config.Model), seed)
}

func (p *PollinationsGenerator) fetchWithRetry(ctx context.Context, imageURL string) ([]byte, error) {
	var err error
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		var data []byte
		data, err = p.download(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		p.logger.Warn("pollinations attempt failed", "attempt", attempt, "error", err)

		if attempt == p.config.MaxAttempts {
			break
		}
		if sleepErr := p.sleep(ctx, time.Duration(attempt)*3*time.Second); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("pollinations fetch failed after %d attempts: %w", p.config.MaxAttempts, err)
}

func (p *PollinationsGenerator) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "youtube-short-creator/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) < minImageBytes {
		return nil, fmt.Errorf("response too small (%d bytes), likely an error page", len(data))
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
