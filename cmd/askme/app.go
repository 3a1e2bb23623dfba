// ABOUTME: Configuration resolution and component wiring shared by askme commands
// ABOUTME: Opens the transcript database, loads the subject profile and builds the answer layer

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/2389/askme/internal/answer"
	"github.com/2389/askme/internal/chat"
	"github.com/2389/askme/internal/config"
	"github.com/2389/askme/internal/history"
)

// loadConfig reads the config file. A missing file at the default location
// is not an error; defaults plus flags are used instead.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}

	var cfg *config.Config
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit && os.Getenv("ASKME_CONFIG") == "" {
		cfg = config.Default()
		path = ""
	} else {
		// Flags may supply the subject, so validate after overrides.
		cfg, err = config.Read(path)
		if err != nil {
			return nil, path, fmt.Errorf("loading config: %w", err)
		}
	}

	if subjectName != "" {
		cfg.Subject.Name = subjectName
		cfg.Subject.ProfilePath = ""
	}
	if visitorName != "" {
		cfg.Visitor.Name = visitorName
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("validating config: %w", err)
	}
	return cfg, path, nil
}

// app holds the long-lived components a command works with.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	history *history.Store
	answers *answer.Orchestrator
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	backend, err := history.NewSQLiteBackend(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	subject, source, err := loadSubject(cfg.Subject)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var svc answer.Service = answer.EchoService{}
	if cfg.Answer.URL != "" {
		svc = answer.NewHTTPService(cfg.Answer.URL, cfg.Answer.Timeout)
	}

	logger.Debug("components ready",
		"database", cfg.Database.Path,
		"driver", cfg.Database.Driver,
		"subject", subject.Name,
		"answer_url", cfg.Answer.URL)

	return &app{
		cfg:     cfg,
		logger:  logger,
		history: history.New(backend, logger),
		answers: answer.NewOrchestrator(svc, source, subject, nil, logger),
	}, nil
}

// loadSubject returns the initial subject profile and the source refreshes
// read from. A bare subject name has no source and never changes.
func loadSubject(cfg config.SubjectConfig) (answer.Profile, answer.ProfileSource, error) {
	if cfg.ProfilePath != "" {
		p, err := answer.LoadProfileFile(cfg.ProfilePath)
		if err != nil {
			return answer.Profile{}, nil, fmt.Errorf("loading subject profile: %w", err)
		}
		return *p, answer.FileProfileSource{Path: cfg.ProfilePath}, nil
	}
	return answer.Profile{Name: strings.TrimSpace(cfg.Name)}, nil, nil
}

// keyFor returns the conversation key a visitor has with the current subject.
func (a *app) keyFor(visitor string) chat.Key {
	if strings.EqualFold(visitor, chat.AnonymousVisitor) {
		visitor = ""
	}
	return chat.ComputeKey(visitor, a.answers.Subject().Name)
}

func (a *app) Close() error {
	return a.history.Close()
}
