// Package session holds the client-side conversation state: the active
// peer, the message feed for that peer, the contact list and the pending
// attachment selection. All mutations funnel through one mutex-guarded
// Session; readers get immutable snapshots and a change notification.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatka/api"
	"chatka/models"
)

// Backend is the slice of the HTTP side channel the session depends on.
// *api.Client satisfies it.
type Backend interface {
	Contacts(ctx context.Context, username string) ([]models.Contact, error)
	VerifyContact(ctx context.Context, username string) (bool, error)
	History(ctx context.Context, u1, u2 string) ([]models.Message, error)
	Upload(ctx context.Context, fileName string, r io.Reader) api.UploadResult
}

// Sender pushes outgoing envelopes over the transport. *transport.Conn
// satisfies it.
type Sender interface {
	Send(env models.Envelope) error
}

// Attachment is a transient file selection waiting to be sent.
type Attachment struct {
	Name string
	Data io.Reader
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Self           string
	Peer           string
	Feed           []models.Message
	Contacts       []models.Contact
	AttachmentName string
}

// Session is the conversation state machine.
type Session struct {
	self    string
	backend Backend
	sender  Sender
	log     *zap.Logger

	mu         sync.Mutex
	peer       string
	feed       []models.Message
	seen       map[string]struct{}
	contacts   []models.Contact
	attachment *Attachment
	fetchToken uuid.UUID
	uploadGen  uint64

	listenerMu sync.Mutex
	listeners  []func()
}

// New creates a session for the local user self.
func New(self string, backend Backend, sender Sender, log *zap.Logger) *Session {
	return &Session{
		self:    self,
		backend: backend,
		sender:  sender,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// Subscribe registers a change listener, invoked after every state
// mutation. Listeners must not call back into the session synchronously
// with blocking work; the UI queues a redraw.
func (s *Session) Subscribe(fn func()) {
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenerMu.Unlock()
}

func (s *Session) notify() {
	s.listenerMu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Snapshot returns a copy of the current state safe for concurrent reads.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Self:     s.self,
		Peer:     s.peer,
		Feed:     make([]models.Message, len(s.feed)),
		Contacts: make([]models.Contact, len(s.contacts)),
	}
	copy(v.Feed, s.feed)
	copy(v.Contacts, s.contacts)
	if s.attachment != nil {
		v.AttachmentName = s.attachment.Name
	}
	return v
}

// Open makes peer the active conversation: the old feed is cleared
// immediately and a history fetch for (self, peer) starts in the
// background. A fetch whose conversation is no longer active when it
// completes is discarded, so a slow response can never overwrite the feed
// of a newer selection.
func (s *Session) Open(ctx context.Context, peer string) {
	token := uuid.New()

	s.mu.Lock()
	s.peer = peer
	s.feed = nil
	s.seen = make(map[string]struct{})
	s.fetchToken = token
	s.mu.Unlock()
	s.notify()

	go func() {
		msgs, err := s.backend.History(ctx, s.self, peer)
		if err != nil {
			s.log.Warn("history fetch failed", zap.String("peer", peer), zap.Error(err))
			msgs = nil
		}
		// Server returns most recent first; display wants ascending.
		reverse(msgs)

		s.mu.Lock()
		if s.fetchToken != token {
			s.mu.Unlock()
			s.log.Debug("discarding stale history fetch", zap.String("peer", peer))
			return
		}
		s.feed = msgs
		s.seen = make(map[string]struct{})
		for _, m := range msgs {
			if m.ID != "" {
				s.seen[m.ID] = struct{}{}
			}
		}
		s.mu.Unlock()
		s.notify()
	}()
}

// HandleEvent routes one inbound push event. It is appended to the feed
// only when it belongs to the active conversation: sent by the active
// peer, or the server echo of the local user's own message. Everything
// else is dropped on the floor; an unopened conversation surfaces later
// through a fresh history fetch, not through the live feed. Echoes already
// present (matched by id) are dropped too.
func (s *Session) HandleEvent(ev models.Message) {
	s.mu.Lock()
	if s.peer == "" || (ev.From != s.peer && ev.From != s.self) {
		s.mu.Unlock()
		return
	}
	if ev.ID != "" {
		if _, dup := s.seen[ev.ID]; dup {
			s.mu.Unlock()
			return
		}
		s.seen[ev.ID] = struct{}{}
	}
	s.feed = append(s.feed, ev)
	s.mu.Unlock()
	s.notify()
}

// Peer returns the active peer, or "" when no conversation is open.
func (s *Session) Peer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// SetContacts replaces the contact list with a freshly fetched one.
func (s *Session) SetContacts(contacts []models.Contact) {
	s.mu.Lock()
	s.contacts = contacts
	s.mu.Unlock()
	s.notify()
}

// RefreshContacts re-fetches the contact list from the backend.
func (s *Session) RefreshContacts(ctx context.Context) {
	contacts, err := s.backend.Contacts(ctx, s.self)
	if err != nil {
		s.log.Warn("contact list fetch failed", zap.Error(err))
		return
	}
	s.SetContacts(contacts)
}

// AddContact verifies username against the backend and, when it exists,
// prepends it to the contact list. Returns false when the user is unknown.
func (s *Session) AddContact(ctx context.Context, username string) (bool, error) {
	ok, err := s.backend.VerifyContact(ctx, username)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.contacts = append([]models.Contact{{
		Username:     username,
		LastActivity: time.Now().Unix(),
	}}, s.contacts...)
	s.mu.Unlock()
	s.notify()
	return true, nil
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
