package imagegen

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ImagenConfig configures the Imagen backend.
type ImagenConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	AspectRatio    string
	ImagesPerScene int
	Timeout        time.Duration
}

// ImagenGenerator renders images with Imagen through the Gemini API.
type ImagenGenerator struct {
	client *genai.Client
	config ImagenConfig
}

// NewImagen creates an Imagen client for config.
func NewImagen(ctx context.Context, config ImagenConfig) (*ImagenGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("imagen: missing API key")
	}
	if config.ImagesPerScene <= 0 {
		config.ImagesPerScene = 1
	}
	if config.AspectRatio == "" {
		config.AspectRatio = "9:16"
	}
	if config.Timeout <= 0 {
		config.Timeout = 3 * time.Minute
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("imagen: create client: %w", err)
	}

	return &ImagenGenerator{client: client, config: config}, nil
}

// Generate implements Generator.
func (g *ImagenGenerator) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateImages(ctx, g.config.Model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   int32(g.config.ImagesPerScene),
		AspectRatio:      g.config.AspectRatio,
		OutputMIMEType:   "image/jpeg",
		PersonGeneration: genai.PersonGenerationAllowAdult,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen API error: %w", err)
	}

	var images [][]byte
	var filtered string
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			images = append(images, generated.Image.ImageBytes)
			continue
		}
		if generated.RAIFilteredReason != "" {
			filtered = generated.RAIFilteredReason
		}
	}

	if len(images) == 0 {
		if filtered != "" {
			return nil, fmt.Errorf("%w: filtered: %s", ErrNoImages, filtered)
		}
		return nil, ErrNoImages
	}
	return images, nil
}
