package bootstrap

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/workspace-secretary/secretary-go/config"
	"github.com/workspace-secretary/secretary-go/internal/classify"
	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/service"
)

// ServiceContainer holds all application services and the repositories
// shared between the HTTP surface and the executor.
type ServiceContainer struct {
	Jobs *service.JobService

	JobRepo       *data.JobRepo
	EventRepo     *data.EventRepo
	CandidateRepo *data.CandidateRepo
	MutationRepo  *data.MutationRepo
	MessageRepo   *data.MessageRepo
	StatusCache   core.StatusCache
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // nil when the status cache is disabled
	Logger      *slog.Logger
}

// BuildServices wires repositories and services from shared dependencies.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	container := &ServiceContainer{
		JobRepo:       data.NewJobRepo(deps.DB, data.RepoConfig{Logger: logger}),
		EventRepo:     data.NewEventRepo(deps.DB),
		CandidateRepo: data.NewCandidateRepo(deps.DB),
		MutationRepo:  data.NewMutationRepo(deps.DB, nil),
		MessageRepo:   data.NewMessageRepo(deps.DB),
	}

	if deps.RedisClient != nil && deps.Config != nil && deps.Config.Cache.Enabled {
		container.StatusCache = data.NewRedisStatusCache(deps.RedisClient, deps.Config.Cache.StatusTTL, logger)
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Jobs:       container.JobRepo,
		Events:     container.EventRepo,
		Candidates: container.CandidateRepo,
		Mutations:  container.MutationRepo,
		Cache:      container.StatusCache,
		Logger:     logger.With("component", "job_service"),
	})
	if err != nil {
		return nil, fmt.Errorf("create job service: %w", err)
	}
	container.Jobs = jobs

	return container, nil
}

// BuildClassifier constructs the triage classifier from configuration,
// loading the optional custom rules file when one is configured.
func BuildClassifier(cfg config.ClassifierConfig) (*classify.RulesClassifier, error) {
	identity := classify.Identity{
		Email:      cfg.UserEmail,
		Name:       cfg.UserName,
		VIPSenders: cfg.VIPSenders,
	}

	var rules []classify.Rule
	if cfg.RulesPath != "" {
		raw, err := os.ReadFile(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("read classifier rules file: %w", err)
		}
		if err := json.Unmarshal(raw, &rules); err != nil {
			return nil, fmt.Errorf("parse classifier rules file: %w", err)
		}
	}

	classifier, err := classify.NewRulesClassifier(identity, rules)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}
	return classifier, nil
}
