// ABOUTME: Session is the conversation state machine behind the widget
// ABOUTME: Owns the message log, persists every mutation, and runs the ask and clear flows

package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/2389/askme/internal/answer"
	"github.com/2389/askme/internal/chat"
	"github.com/2389/askme/internal/identity"
	"github.com/2389/askme/internal/notice"
)

// State is the request lifecycle state of a session.
type State int

const (
	// StateIdle means no answer is outstanding.
	StateIdle State = iota
	// StateAwaitingAnswer means exactly one ask is in flight.
	StateAwaitingAnswer
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	default:
		return "unknown"
	}
}

// HistoryStore defines what the session needs from durable storage
type HistoryStore interface {
	Load(ctx context.Context, key chat.Key) (chat.Transcript, bool)
	Save(ctx context.Context, key chat.Key, t chat.Transcript) error
	Delete(ctx context.Context, key chat.Key) error
}

// IdentityResolver decides the effective visitor and conversation key
type IdentityResolver interface {
	Resolve(suppliedName, subjectName string) identity.Resolution
}

// Answerer defines what the session needs from the answer layer
type Answerer interface {
	Ask(ctx context.Context, question string) (string, error)
	Refresh(ctx context.Context) (answer.Profile, bool, error)
	Subject() answer.Profile
}

// Config wires a Session to its collaborators.
type Config struct {
	History  HistoryStore
	Identity IdentityResolver
	Answers  Answerer

	// VisitorName is the externally supplied visitor name, if any
	VisitorName string

	NoticeDuration time.Duration
	Scheduler      notice.Scheduler
	Clock          func() time.Time
	Logger         *slog.Logger
}

// View is an immutable snapshot of everything a presentation layer renders.
type View struct {
	Key             chat.Key
	VisitorName     string
	Subject         string
	Messages        chat.Transcript
	State           State
	ConfirmingClear bool
	LastQuestion    string
	Draft           string
	Notices         []notice.Kind
}

// Loading reports whether an answer is outstanding.
func (v View) Loading() bool {
	return v.State == StateAwaitingAnswer
}

// HasNotice reports whether k is currently shown.
func (v View) HasNotice(k notice.Kind) bool {
	for _, n := range v.Notices {
		if n == k {
			return true
		}
	}
	return false
}

// Session holds one visitor's conversation about one subject. All
// transitions run under a single mutex; only asks and profile refreshes
// suspend outside it.
type Session struct {
	history  HistoryStore
	resolver IdentityResolver
	answers  Answerer
	notices  *notice.Board
	events   *broadcaster
	now      func() time.Time
	logger   *slog.Logger

	inflight sync.WaitGroup

	mu              sync.Mutex
	suppliedName    string
	visitorName     string
	subjectName     string
	key             chat.Key
	messages        chat.Transcript
	state           State
	confirmingClear bool
	lastQuestion    string
	draft           string
	closed          bool
}

// New resolves the visitor, restores or seeds the transcript, and returns a
// ready session.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.History == nil {
		return nil, errors.New("history store is required")
	}
	if cfg.Answers == nil {
		return nil, errors.New("answerer is required")
	}
	if cfg.Identity == nil {
		cfg.Identity = identity.NewResolver(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		history:      cfg.History,
		resolver:     cfg.Identity,
		answers:      cfg.Answers,
		now:          cfg.Clock,
		logger:       logger.With("component", "conversation"),
		suppliedName: cfg.VisitorName,
		subjectName:  cfg.Answers.Subject().Name,
	}
	s.events = newBroadcaster(logger)
	s.notices = notice.NewBoard(cfg.NoticeDuration, cfg.Scheduler, s.noticeExpired)

	s.mu.Lock()
	s.reconcileLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("session started",
		"conversation_key", s.key,
		"messages", len(s.messages))
	return s, nil
}

// View returns a snapshot of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe streams render and scroll events until ctx is cancelled or the
// session is closed. Delivery is best effort: once a subscriber has
// subscriberBufferSize events unread, further events are dropped for it
// until it catches up. View always reflects the latest state.
func (s *Session) Subscribe(ctx context.Context) (<-chan Event, string) {
	return s.events.subscribe(ctx)
}

// SetDraft replaces the input buffer.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
	s.publishLocked(false)
}

// SendDraft submits the input buffer.
func (s *Session) SendDraft(ctx context.Context) (<-chan struct{}, bool) {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	return s.Submit(ctx, draft)
}

// Submit appends question as a user message and asks the answer service.
// It is a no-op returning false when question is blank, an answer is
// already outstanding, or the session is closed. On acceptance the returned
// channel closes once the answer (or the apology) has been appended.
//
// Neither the ask nor the transcript writes are cancelled when ctx is.
func (s *Session) Submit(ctx context.Context, question string) (<-chan struct{}, bool) {
	s.mu.Lock()
	if s.closed || s.state != StateIdle || strings.TrimSpace(question) == "" {
		s.mu.Unlock()
		return nil, false
	}

	ctx = context.WithoutCancel(ctx)
	key, visitor, subject := s.key, s.visitorName, s.subjectName
	s.messages = append(s.messages, chat.NewMessage(chat.KindUser, question, s.now()))
	s.persistLocked(ctx, key, s.messages)
	s.lastQuestion = question
	s.draft = ""
	s.state = StateAwaitingAnswer
	s.publishLocked(true)

	done := make(chan struct{})
	s.inflight.Add(1)
	s.mu.Unlock()

	s.logger.Debug("question submitted", "conversation_key", key)
	go s.await(ctx, key, visitor, subject, question, done)
	return done, true
}

// await runs the ask and settles the session back to idle. visitor and
// subject name the conversation key belongs to.
func (s *Session) await(ctx context.Context, key chat.Key, visitor, subject, question string, done chan struct{}) {
	defer s.inflight.Done()
	defer close(done)

	text, err := s.answers.Ask(ctx, question)

	s.mu.Lock()
	defer s.mu.Unlock()

	var reply chat.Message
	if err != nil {
		s.logger.Warn("answer failed, replying with apology",
			"conversation_key", key,
			"error", err)
		reply = chat.NewMessage(chat.KindBot, chat.Apology, s.now())
	} else {
		reply = chat.NewMessage(chat.KindBot, text, s.now())
	}
	s.state = StateIdle

	if key != s.key {
		// The visitor or subject changed while waiting; the answer still
		// belongs to the conversation it was asked in.
		stored, ok := s.history.Load(ctx, key)
		if !ok || len(stored) == 0 {
			stored = chat.Greeting(visitor, subject, reply.Timestamp)
		}
		s.persistLocked(ctx, key, append(stored, reply))
		s.publishLocked(false)
		return
	}

	s.messages = append(s.messages, reply)
	s.persistLocked(ctx, key, s.messages)
	s.publishLocked(true)
}

// SetVisitorName updates the externally supplied visitor name and switches
// to that visitor's conversation.
func (s *Session) SetVisitorName(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == s.suppliedName {
		return
	}
	s.suppliedName = name
	if s.reconcileLocked(ctx) {
		s.publishLocked(true)
	}
}

// Reidentify re-runs identity resolution, picking up a name the
// identity-capture flow stored in session memory.
func (s *Session) Reidentify(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconcileLocked(ctx) {
		s.publishLocked(true)
	}
}

// KnowledgeBaseChanged re-fetches the subject profile after an external edit.
// On success the "profile updated" notice is raised and, if the subject was
// renamed, the session switches to that subject's conversation. A refresh
// failure keeps the previous profile and raises nothing; the returned error
// is for logging only.
func (s *Session) KnowledgeBaseChanged(ctx context.Context) error {
	profile, changed, err := s.answers.Refresh(ctx)
	if err != nil {
		s.logger.Warn("knowledge base refresh failed", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	switched := false
	if changed && profile.Name != s.subjectName {
		s.subjectName = profile.Name
		switched = s.reconcileLocked(ctx)
	}
	s.notices.Raise(notice.ProfileUpdated)
	s.publishLocked(switched)
	return nil
}

// RequestClear asks for confirmation before deleting history. Nothing is
// mutated until ConfirmClear.
func (s *Session) RequestClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.confirmingClear = true
	s.publishLocked(false)
	return true
}

// CancelClear drops a pending clear request.
func (s *Session) CancelClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmingClear {
		return false
	}
	s.confirmingClear = false
	s.publishLocked(false)
	return true
}

// ConfirmClear deletes the stored transcript, resets to a fresh greeting and
// raises the "history deleted" notice, publishing a single render afterwards.
// It is a no-op returning false without a pending RequestClear. If the
// stored transcript cannot be deleted the pending request is dropped, the
// conversation is left as it was and false is returned.
//
// The transcript writes are not cancelled when ctx is.
func (s *Session) ConfirmClear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmingClear {
		return false
	}
	s.confirmingClear = false
	ctx = context.WithoutCancel(ctx)

	if err := s.history.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to delete history", "conversation_key", s.key, "error", err)
		s.publishLocked(false)
		return false
	}
	s.messages = chat.Greeting(s.visitorName, s.subjectName, s.now())
	s.persistLocked(ctx, s.key, s.messages)
	s.notices.Raise(notice.HistoryDeleted)

	s.logger.Info("history cleared", "conversation_key", s.key)
	s.publishLocked(true)
	return true
}

// Close rejects further submissions, waits for any outstanding answer to
// settle, stops notice timers and closes subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
	s.notices.Close()
	s.events.close()
}

// reconcileLocked recomputes the conversation key and loads the matching
// transcript. Reports whether the visible conversation changed.
// Must be called with mu held.
func (s *Session) reconcileLocked(ctx context.Context) bool {
	res := s.resolver.Resolve(s.suppliedName, s.subjectName)
	if res.Key == s.key && s.messages != nil {
		s.visitorName = res.VisitorName
		return false
	}

	s.key = res.Key
	s.visitorName = res.VisitorName

	if stored, ok := s.history.Load(ctx, s.key); ok && len(stored) > 0 {
		s.messages = stored
		s.logger.Debug("restored transcript", "conversation_key", s.key, "messages", len(stored))
		return true
	}

	if s.messages.IsDefaultGreeting() {
		// Re-address the untouched seed greeting, keeping its timestamp.
		seed := s.messages[0]
		s.messages = chat.Transcript{
			chat.NewMessage(chat.KindBot, chat.GreetingText(s.visitorName, s.subjectName), seed.Timestamp),
		}
	} else {
		s.messages = chat.Greeting(s.visitorName, s.subjectName, s.now())
	}
	s.persistLocked(ctx, s.key, s.messages)
	return true
}

// persistLocked saves t under key. Failures are logged; the in-memory
// conversation carries on. Must be called with mu held.
func (s *Session) persistLocked(ctx context.Context, key chat.Key, t chat.Transcript) {
	if err := s.history.Save(ctx, key, t); err != nil {
		s.logger.Error("failed to save transcript", "conversation_key", key, "error", err)
	}
}

// publishLocked emits a render event, followed by one scroll event when the
// message log changed. Must be called with mu held.
func (s *Session) publishLocked(scroll bool) {
	v := s.viewLocked()
	s.events.publish(Event{Type: EventRender, View: v})
	if scroll {
		s.events.publish(Event{Type: EventScroll, View: v})
	}
}

func (s *Session) viewLocked() View {
	return View{
		Key:             s.key,
		VisitorName:     s.visitorName,
		Subject:         s.subjectName,
		Messages:        s.messages.Clone(),
		State:           s.state,
		ConfirmingClear: s.confirmingClear,
		LastQuestion:    s.lastQuestion,
		Draft:           s.draft,
		Notices:         s.notices.Snapshot(),
	}
}

// noticeExpired re-renders after a notice clears itself.
func (s *Session) noticeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.publishLocked(false)
}
