// ABOUTME: Orchestrator issues questions to the answer service with the current profile
// ABOUTME: Wraps service failures as ServiceError and swaps the profile on refresh

package answer

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Orchestrator mediates between a conversation and the answer service.
type Orchestrator struct {
	service Service
	source  ProfileSource
	logger  *slog.Logger

	mu      sync.RWMutex
	subject Profile
	viewer  *Profile
}

// NewOrchestrator creates an Orchestrator. source may be nil, in which case
// Refresh never changes the profile. Pass nil logger for default.
func NewOrchestrator(service Service, source ProfileSource, subject Profile, viewer *Profile, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		service: service,
		source:  source,
		subject: subject,
		viewer:  viewer,
		logger:  logger.With("component", "answer"),
	}
}

// Subject returns the profile used for the next ask.
func (o *Orchestrator) Subject() Profile {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.subject
}

// Ask sends question to the answer service. Any failure is returned as a
// *ServiceError.
func (o *Orchestrator) Ask(ctx context.Context, question string) (string, error) {
	o.mu.RLock()
	q := Question{
		RequestID: uuid.New().String(),
		Text:      question,
		Subject:   o.subject,
		Viewer:    o.viewer,
	}
	o.mu.RUnlock()

	start := time.Now()
	text, err := o.service.Answer(ctx, q)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyAnswer
	}
	if err != nil {
		o.logger.Error("answer request failed",
			"request_id", q.RequestID,
			"subject", q.Subject.Name,
			"elapsed", time.Since(start),
			"error", err)
		return "", &ServiceError{RequestID: q.RequestID, Err: err}
	}

	o.logger.Debug("answer received",
		"request_id", q.RequestID,
		"subject", q.Subject.Name,
		"elapsed", time.Since(start),
		"length", len(text))
	return text, nil
}

// Refresh re-fetches the subject profile. changed is true when a new profile
// was swapped in. On error the previous profile stays in use.
func (o *Orchestrator) Refresh(ctx context.Context) (profile Profile, changed bool, err error) {
	if o.source == nil {
		return o.Subject(), false, nil
	}

	p, err := o.source.FetchProfile(ctx)
	if err == nil && p != nil {
		err = p.Validate()
	}
	if err != nil {
		o.logger.Warn("profile refresh failed, keeping previous profile", "error", err)
		return o.Subject(), false, &RefreshError{Err: err}
	}
	if p == nil {
		o.logger.Debug("profile refresh returned nothing new")
		return o.Subject(), false, nil
	}

	o.mu.Lock()
	previous := o.subject.Name
	o.subject = *p
	o.mu.Unlock()

	o.logger.Info("subject profile refreshed", "subject", p.Name, "previous", previous)
	return *p, true, nil
}
