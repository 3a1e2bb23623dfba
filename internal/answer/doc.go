// Package answer talks to the external answer-generation service on behalf of
// a conversation.
//
// # Orchestrator
//
// The Orchestrator owns the current subject profile and issues questions:
//
//	orch := answer.NewOrchestrator(service, profiles, subject, viewer, logger)
//	text, err := orch.Ask(ctx, "What projects have you built?")
//
// Every failure from the service comes back as a *ServiceError so callers
// can substitute a fixed apology without inspecting transport details.
//
// Refresh re-fetches the subject profile after the knowledge base changed.
// On success the new profile is used for later asks; on failure the previous
// profile is kept and a *RefreshError is returned.
//
// # Services
//
//   - HTTPService: JSON POST to a configured endpoint
//   - EchoService: offline stand-in that answers from the profile itself
//
// # Profile Sources
//
//   - FileProfileSource: re-reads a YAML profile file
//   - StaticProfileSource: always returns the same profile
package answer
