// Package conversation runs the widget's conversation session.
//
// # Overview
//
// A Session owns one visitor's message log for one subject. It restores the
// log from the history store, mutates it in response to user actions, saves
// it after every change, and tells presentation layers what to draw.
//
//	sess, err := conversation.New(ctx, conversation.Config{
//		History:  historyStore,
//		Identity: identity.NewResolver(memory),
//		Answers:  orchestrator,
//	})
//
// # Request Lifecycle
//
// The session is either Idle or AwaitingAnswer:
//
//  1. Submit appends the user message and moves to AwaitingAnswer
//  2. Exactly one ask runs against the answer service
//  3. The answer, or the fixed apology on failure, is appended
//  4. The session returns to Idle
//
// Submitting while AwaitingAnswer is a no-op. There is no queue and no
// cancellation of an ask in flight.
//
// # Clearing History
//
// Clearing is a two-step flow:
//
//	sess.RequestClear()      // shows the confirmation, mutates nothing
//	sess.CancelClear()       // or...
//	sess.ConfirmClear(ctx)   // delete, reset to greeting, raise notice
//
// The three effects of ConfirmClear happen under one lock and produce a
// single render event.
//
// # Conversation Keys
//
// The key is recomputed from the visitor name and subject name whenever
// either changes (SetVisitorName, Reidentify, or a renamed subject after
// KnowledgeBaseChanged). One reconciliation routine handles every change.
//
// # Events
//
// Subscribe returns a channel of Events. Every change publishes a render
// event with a View snapshot; changes to the message log also publish one
// scroll event right after the render.
package conversation
