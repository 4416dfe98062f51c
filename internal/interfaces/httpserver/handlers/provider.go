package handlers

import (
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Application *ApplicationHandler
	Chat        *ChatHandler
	Profile     *ProfileHandler
	Analysis    *AnalysisHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	applications ApplicationService,
	chats ChatService,
	profiles ProfileService,
	expenses ExpenseService,
	schemes WelfareService,
	maxUploadBytes int64,
	sanitizer *telemetry.Sanitizer,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Application: NewApplicationHandler(applications, maxUploadBytes, sanitizer, log),
		Chat:        NewChatHandler(chats, log),
		Profile:     NewProfileHandler(profiles, sanitizer, log),
		Analysis:    NewAnalysisHandler(expenses, schemes, maxUploadBytes, log),
	}
}
