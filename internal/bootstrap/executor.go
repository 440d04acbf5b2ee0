package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/workspace-secretary/secretary-go/config"
	"github.com/workspace-secretary/secretary-go/internal/adapters/executor"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// ExecutorDeps groups dependencies for the job executor service.
type ExecutorDeps struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	// MailFactory opens mailbox sessions. When nil, a client backed by
	// the local message store is used.
	MailFactory mail.Factory
	Logger      *slog.Logger
}

// RunExecutor builds the mail pool, classifier, and job runner, then
// runs the executor until ctx is cancelled.
func RunExecutor(ctx context.Context, deps ExecutorDeps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	factory := deps.MailFactory
	if factory == nil {
		logger.Warn("no mail transport configured, using local message store")
		factory = mail.NewLocalFactory(deps.Services.MessageRepo)
	}

	execCfg := deps.Config.Executor
	pool := mail.NewPool(factory, mail.PoolConfig{
		Size:           execCfg.MailPoolSize,
		AcquireTimeout: execCfg.MailAcquireTimeout,
		Logger:         logger.With("component", "mail_pool"),
	})
	defer pool.Close()

	classifier, err := BuildClassifier(deps.Config.Classifier)
	if err != nil {
		return err
	}

	runner, err := executor.NewRunner(executor.RunnerOptions{
		Jobs:         deps.Services.JobRepo,
		Events:       deps.Services.EventRepo,
		Candidates:   deps.Services.CandidateRepo,
		Mutations:    deps.Services.MutationRepo,
		Messages:     deps.Services.MessageRepo,
		Pool:         pool,
		Classifier:   classifier,
		Cache:        deps.Services.StatusCache,
		Logger:       logger.With("component", "executor"),
		PollInterval: execCfg.PollInterval,
		Concurrency:  execCfg.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("create job runner: %w", err)
	}

	return runner.Run(ctx)
}
