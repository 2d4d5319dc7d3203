// Package imagegen hides image generation backends behind one interface.
package imagegen

import (
	"context"
	"errors"
	"hash/fnv"
)

// ErrNoImages is returned when a backend answers without any image data.
var ErrNoImages = errors.New("no images generated")

// Generator renders images for a prompt. Each returned slice is one encoded
// JPEG.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([][]byte, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) ([][]byte, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	return f(ctx, prompt)
}

// promptSeed derives a stable seed from a prompt so reruns give the same picture.
func promptSeed(prompt string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return h.Sum32()
}
