// ABOUTME: Resolves the effective visitor identity and its conversation key
// ABOUTME: A supplied name wins; otherwise a name remembered in session memory is adopted

// Package identity decides who the current visitor is.
package identity

import (
	"strings"

	"github.com/2389/askme/internal/chat"
	"github.com/2389/askme/internal/sessionmem"
)

// SessionMemory is the read side of the short-lived session store.
type SessionMemory interface {
	Get(key string) (string, bool)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// VisitorName is empty for anonymous visitors
	VisitorName string
	// Remembered is true when the name came from session memory
	Remembered bool
	Key        chat.Key
}

// Resolver reconciles an externally supplied visitor name with one remembered
// from earlier in the session. It only reads session memory.
type Resolver struct {
	memory SessionMemory
}

// NewResolver creates a Resolver. A nil memory behaves as empty.
func NewResolver(memory SessionMemory) *Resolver {
	return &Resolver{memory: memory}
}

// Resolve returns the effective visitor name and conversation key.
func (r *Resolver) Resolve(suppliedName, subjectName string) Resolution {
	if name := strings.TrimSpace(suppliedName); name != "" {
		return Resolution{
			VisitorName: name,
			Key:         chat.ComputeKey(name, subjectName),
		}
	}

	if r.memory != nil {
		if name, ok := r.memory.Get(sessionmem.VisitorNameKey); ok {
			if name = strings.TrimSpace(name); name != "" {
				return Resolution{
					VisitorName: name,
					Remembered:  true,
					Key:         chat.ComputeKey(name, subjectName),
				}
			}
		}
	}

	return Resolution{Key: chat.ComputeKey("", subjectName)}
}
