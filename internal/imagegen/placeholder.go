package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// PlaceholderGenerator renders flat-colored JPEGs locally. It keeps the
// asset stage usable without network access or API keys.
type PlaceholderGenerator struct {
	Width          int
	Height         int
	ImagesPerScene int
}

// NewPlaceholder returns a placeholder renderer. Non-positive sizes fall back
// to a small 9:16 frame.
func NewPlaceholder(width, height, imagesPerScene int) *PlaceholderGenerator {
	if width <= 0 || height <= 0 {
		width, height = 90, 160
	}
	if imagesPerScene <= 0 {
		imagesPerScene = 1
	}
	return &PlaceholderGenerator{Width: width, Height: height, ImagesPerScene: imagesPerScene}
}

// Generate implements Generator.
func (p *PlaceholderGenerator) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	seed := promptSeed(prompt)
	images := make([][]byte, 0, p.ImagesPerScene)

	for i := 0; i < p.ImagesPerScene; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s := seed + uint32(i)*0x9e3779b9
		fill := color.RGBA{R: uint8(s), G: uint8(s >> 8), B: uint8(s >> 16), A: 0xff}

		img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
			return nil, fmt.Errorf("encode placeholder: %w", err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}
