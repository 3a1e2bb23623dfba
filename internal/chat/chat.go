// ABOUTME: Message, Transcript and ConversationKey types for the widget core
// ABOUTME: Key derivation, default greeting and the fixed apology text live here

package chat

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags a message as coming from the visitor or from the assistant.
type Kind string

const (
	KindUser Kind = "user"
	KindBot  Kind = "bot"
)

// Valid reports whether k is one of the two known tags.
func (k Kind) Valid() bool {
	return k == KindUser || k == KindBot
}

// AnonymousVisitor is the visitor name used in keys when nobody introduced themselves.
const AnonymousVisitor = "anonymous"

// Apology is the only failure text a visitor ever sees.
const Apology = "I'm sorry, I couldn't process your request. Please try again later."

// Message is a single entry in a transcript.
type Message struct {
	Kind      Kind      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a message stamped with at, normalised to UTC without a
// monotonic reading so it survives a JSON round trip unchanged.
func NewMessage(kind Kind, content string, at time.Time) Message {
	return Message{
		Kind:      kind,
		Content:   content,
		Timestamp: at.UTC().Round(0),
	}
}

// Label is the author line shown above a message.
func (m Message) Label(visitorName string) string {
	switch m.Kind {
	case KindBot:
		return "Assistant"
	case KindUser:
		if strings.TrimSpace(visitorName) != "" {
			return visitorName
		}
		return "You"
	default:
		return ""
	}
}

// TimeLabel formats the timestamp as hours and minutes in local time.
func (m Message) TimeLabel() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Local().Format("15:04")
}

// Transcript is the ordered message log of one conversation.
type Transcript []Message

// Clone returns a copy that shares no backing array with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Last returns the most recent message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// IsDefaultGreeting reports whether t still holds only the seeded greeting.
func (t Transcript) IsDefaultGreeting() bool {
	return len(t) == 1 && t[0].Kind == KindBot
}

// Key identifies one transcript in the history store.
type Key string

func (k Key) String() string { return string(k) }

var keyEscaper = strings.NewReplacer(`\`, `\\`, `_`, `\_`)

// ComputeKey derives the storage key for a visitor/subject pair. A blank
// visitor name maps to AnonymousVisitor. Underscores inside either name are
// escaped so the separator stays unambiguous.
func ComputeKey(visitorName, subjectName string) Key {
	visitor := strings.TrimSpace(visitorName)
	if visitor == "" {
		visitor = AnonymousVisitor
	}
	return Key(keyEscaper.Replace(visitor) + "_" + keyEscaper.Replace(subjectName))
}

// GreetingText is the text of the seeded first message.
func GreetingText(visitorName, subjectName string) string {
	hello := "Hi"
	if name := strings.TrimSpace(visitorName); name != "" {
		hello += " " + name
	}
	return fmt.Sprintf("%s! I'm %s AI assistant. Feel free to ask me about my projects, experience, or skills!", hello, subjectName)
}

// Greeting returns the single-message transcript for a conversation with no history.
func Greeting(visitorName, subjectName string, at time.Time) Transcript {
	return Transcript{NewMessage(KindBot, GreetingText(visitorName, subjectName), at)}
}
