// Package chat defines the conversation data model shared by every layer.
//
// # Messages
//
// A Message is tagged with exactly one Kind (user or bot). Rendering and
// timestamp labelling dispatch on the tag:
//
//	msg.Label("Ada")  // "Assistant" for bot, visitor name (or "You") for user
//	msg.TimeLabel()   // "15:04" in local time
//
// Messages are immutable once created and a Transcript is ordered by
// insertion.
//
// # Conversation Keys
//
// Each transcript belongs to exactly one Key, derived from the visitor and
// subject names:
//
//	chat.ComputeKey("", "Ada")     // "anonymous_Ada"
//	chat.ComputeKey("Grace", "Ada") // "Grace_Ada"
//
// # Greeting
//
// A transcript with nothing stored starts with a single bot greeting built by
// Greeting. IsDefaultGreeting reports whether a transcript is still exactly
// that single seeded message.
package chat
