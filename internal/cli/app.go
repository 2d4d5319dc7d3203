package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/geethika608/youtube-short-creator/internal/archive"
	"github.com/geethika608/youtube-short-creator/internal/config"
	"github.com/geethika608/youtube-short-creator/internal/eventlog"
	"github.com/geethika608/youtube-short-creator/internal/imagegen"
	"github.com/geethika608/youtube-short-creator/internal/llm"
	"github.com/geethika608/youtube-short-creator/internal/research"
	"github.com/geethika608/youtube-short-creator/internal/session"
	"github.com/geethika608/youtube-short-creator/internal/step"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
	"github.com/geethika608/youtube-short-creator/internal/workspace"
)

// app is the configuration and storage shared by every command.
type app struct {
	cfg          *config.Config
	cfgPath      string
	projectsRoot string
	stateDir     string
	logger       *slog.Logger
	store        *session.FileStore
	recorder     *eventlog.Recorder
}

// loadApp resolves the config, logger and state directories. It does not
// contact any generation backend.
func loadApp(cmd *cobra.Command) (*app, error) {
	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, cfgPath, err := loadOrCreateConfig(configPath, bootstrap)
	if err != nil {
		return nil, err
	}

	if err := config.LoadEnv(filepath.Join(filepath.Dir(cfgPath), ".env")); err != nil {
		return nil, err
	}

	levelFlag, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	if levelFlag != "" {
		cfg.LogLevel = levelFlag
	}
	level, _, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("loaded configuration", "path", cfgPath)

	a := &app{
		cfg:          cfg,
		cfgPath:      cfgPath,
		projectsRoot: resolvePath(cfgPath, cfg.ProjectsRoot),
		stateDir:     resolvePath(cfgPath, cfg.StateDir),
		logger:       logger,
	}

	initialized, err := workspace.IsStateInitialized(a.stateDir)
	if err != nil {
		return nil, err
	}
	if !initialized {
		logger.Info("initializing state directory", "path", a.stateDir)
		if err := workspace.InitializeState(a.stateDir); err != nil {
			return nil, fmt.Errorf("failed to initialize state directory: %w", err)
		}
	}
	a.store = session.NewFileStore(filepath.Join(a.stateDir, "sessions"))
	a.recorder = eventlog.NewRecorder(filepath.Join(a.stateDir, "transcripts"), logger)
	return a, nil
}

// runner builds the generation backends and the workflow around them.
func (a *app) runner(ctx context.Context) (*workflow.Runner, error) {
	textCfg := a.cfg.Text
	if textCfg.ScriptPath != "" {
		textCfg.ScriptPath = resolvePath(a.cfgPath, textCfg.ScriptPath)
	}
	text, err := llm.New(ctx, textCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create text backend: %w", err)
	}

	images, err := imagegen.New(ctx, a.cfg.Image, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image backend: %w", err)
	}

	var sources []research.Source
	if r := a.cfg.Research.Reddit; r.Enabled {
		src, err := research.NewReddit(research.RedditConfig{Subreddit: r.Subreddit, Limit: r.Limit, Time: r.Time})
		if err != nil {
			return nil, fmt.Errorf("failed to create reddit source: %w", err)
		}
		sources = append(sources, src)
	}

	steps := workflow.Steps{
		Theme:    step.ThemeStep{LLM: text},
		Research: step.ResearchStep{LLM: text, Sources: sources, Logger: a.logger},
		Script:   step.ScriptStep{LLM: text, MinWords: a.cfg.Script.MinWords, MaxWords: a.cfg.Script.MaxWords, Logger: a.logger},
		Prompts:  step.PromptStep{LLM: text, MinScenes: a.cfg.Scenes.Min, MaxScenes: a.cfg.Scenes.Max, Logger: a.logger},
		Images:   step.ImageStep{Images: images, Logger: a.logger},
	}

	var extractor workflow.Extractor
	if a.cfg.Checkpoint.ExtractWithModel {
		extractor = step.FeedbackExtractor{LLM: text}
	}

	controller := workflow.NewController(
		steps,
		step.NewInvoker(archive.New(a.logger), a.logger),
		workflow.NewGate(extractor, a.logger),
		workspace.NewProvisioner(a.projectsRoot),
		a.logger,
	)
	return workflow.NewRunner(controller, a.store, a.recorder, session.NewLocks(), a.logger), nil
}

// sessionFlag returns --session, or a new ID when it is empty and create is set.
func sessionFlag(cmd *cobra.Command, create bool) (string, error) {
	id, err := cmd.Flags().GetString("session")
	if err != nil {
		return "", err
	}
	if id == "" {
		if !create {
			return "", errors.New("--session is required")
		}
		return session.NewID(timeNow()), nil
	}
	if err := session.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// resolvePath interprets p relative to the directory holding the config file.
func resolvePath(cfgPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(cfgPath), p)
}

// loadOrCreateConfig returns the config at configPath when given. Otherwise it
// walks up from the working directory looking for shorts.yaml and writes a
// default one in the working directory when none is found.
func loadOrCreateConfig(configPath string, logger *slog.Logger) (*config.Config, string, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		return cfg, abs, nil
	}

	foundPath, err := findConfigInTree()
	if err != nil {
		return nil, "", err
	}

	if foundPath != "" {
		logger.Info("found existing config", "path", foundPath)
		cfg, err := config.LoadFromFile(foundPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, foundPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	defaultPath := filepath.Join(cwd, config.FileName)
	logger.Warn("no config found, creating default", "path", defaultPath)

	cfg := config.GenerateDefault()
	if err := cfg.SaveToFile(defaultPath); err != nil {
		return nil, "", fmt.Errorf("failed to save default config: %w", err)
	}
	return cfg, defaultPath, nil
}

// findConfigInTree searches up the directory tree for shorts.yaml
func findConfigInTree() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for {
		configPath := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
