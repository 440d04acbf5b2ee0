// Package mocks provides mock implementations for testing the secretary job engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// collaborator interfaces the executor depends on. The mocks are generated
// using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	client := mocks.NewMockClient(ctrl)
//	client.EXPECT().MarkRead(gomock.Any(), 7, "INBOX").Return(nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/workspace-secretary/secretary-go/internal/core JobRepository

// Generate mock for EventRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=event_repository_mock.go github.com/workspace-secretary/secretary-go/internal/core EventRepository

// Generate mock for CandidateRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=candidate_repository_mock.go github.com/workspace-secretary/secretary-go/internal/core CandidateRepository

// Generate mock for MutationJournal interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=mutation_journal_mock.go github.com/workspace-secretary/secretary-go/internal/core MutationJournal

// Generate mock for StatusCache interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=status_cache_mock.go github.com/workspace-secretary/secretary-go/internal/core StatusCache

// Generate mock for the mail session interface.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=mail_client_mock.go github.com/workspace-secretary/secretary-go/internal/mail Client

// Generate mock for the triage classifier interface.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=classifier_mock.go github.com/workspace-secretary/secretary-go/internal/classify Classifier
