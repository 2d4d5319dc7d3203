package step

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/geethika608/youtube-short-creator/internal/fsutil"
	"github.com/geethika608/youtube-short-creator/internal/imagegen"
)

// SceneResult reports the images written for one scene.
type SceneResult struct {
	Scene  int      `json:"scene"`
	Prompt string   `json:"prompt"`
	Dir    string   `json:"dir"`
	Images []string `json:"images,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Failed reports whether the scene produced no images.
func (r SceneResult) Failed() bool { return r.Error != "" }

// ImageStep renders every image prompt into the project folder as
// scene_<n>/images/image_<m>.jpg. Scenes run in order; a failed scene is
// recorded in its result and the remaining scenes still run.
type ImageStep struct {
	Images imagegen.Generator
	Logger *slog.Logger
}

// Name implements Step.
func (ImageStep) Name() string { return "images" }

// OutputKey implements Step.
func (ImageStep) OutputKey() string { return KeyImagesPath }

// Run implements Step. The output is a []SceneResult.
func (s ImageStep) Run(ctx context.Context, state SharedState) (any, error) {
	assets := state.String(KeyAssetsPath)
	if assets == "" {
		return nil, fmt.Errorf("no project folder to write images into")
	}

	prompts := PromptsFrom(state[KeyImagePrompts])
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no image prompts")
	}

	results := make([]SceneResult, 0, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, s.renderScene(ctx, assets, i+1, prompt))
	}
	return results, nil
}

func (s ImageStep) renderScene(ctx context.Context, assets string, scene int, prompt string) SceneResult {
	logger := s.logger().With("scene", scene)
	dir := filepath.Join(assets, fmt.Sprintf("scene_%d", scene), "images")
	result := SceneResult{Scene: scene, Prompt: prompt, Dir: dir}

	images, err := s.Images.Generate(ctx, prompt)
	if err == nil && len(images) == 0 {
		err = imagegen.ErrNoImages
	}
	if err != nil {
		logger.Warn("scene image generation failed", "error", err)
		result.Error = err.Error()
		return result
	}

	for m, data := range images {
		path := filepath.Join(dir, fmt.Sprintf("image_%d.jpg", m+1))
		if err := fsutil.AtomicWrite(path, data, 0o644); err != nil {
			logger.Warn("failed to save scene image", "path", path, "error", err)
			result.Error = err.Error()
			continue
		}
		result.Images = append(result.Images, path)
	}
	if len(result.Images) > 0 {
		result.Error = ""
	}
	logger.Info("scene rendered", "images", len(result.Images))
	return result
}

func (s ImageStep) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
