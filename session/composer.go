package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"chatka/models"
)

// Attach records a file selection for the next send. Selecting a new file
// replaces the previous one and invalidates any upload still in flight
// for it.
func (s *Session) Attach(name string, data io.Reader) {
	s.mu.Lock()
	s.attachment = &Attachment{Name: name, Data: data}
	s.uploadGen++
	s.mu.Unlock()
	s.notify()
}

// ClearAttachment drops the pending selection. An upload already running
// for it will have its result discarded when it lands.
func (s *Session) ClearAttachment() {
	s.mu.Lock()
	s.attachment = nil
	s.uploadGen++
	s.mu.Unlock()
	s.notify()
}

// Send composes and transmits one message. A send happens only when a
// conversation is open and there is either non-blank text or a pending
// attachment; otherwise it is a no-op and returns false.
//
// With an attachment the upload pipeline runs first: its URL — or the
// placeholder line when the upload fails in any way — is prepended on its
// own line. Upload failure degrades the message, it never blocks it. The
// attachment selection is cleared after the send regardless of the upload
// outcome. The sent message is not appended locally; it shows up when the
// server echoes it back through the push stream.
func (s *Session) Send(ctx context.Context, text string) bool {
	s.mu.Lock()
	peer := s.peer
	att := s.attachment
	gen := s.uploadGen
	s.mu.Unlock()

	if peer == "" {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && att == nil {
		return false
	}

	var attachmentLine string
	if att != nil {
		res := s.backend.Upload(ctx, att.Name, att.Data)

		s.mu.Lock()
		stale := gen != s.uploadGen
		s.mu.Unlock()

		if stale {
			// The selection was cleared or replaced while uploading;
			// the result belongs to nobody.
			s.log.Debug("discarding upload result for abandoned attachment", zap.String("file", att.Name))
			if trimmed == "" {
				return false
			}
		} else if res.OK {
			attachmentLine = res.URL + "\n"
		} else {
			attachmentLine = fmt.Sprintf("[attachment: %s]\n", att.Name)
		}
	}

	body := strings.TrimSpace(attachmentLine + trimmed)
	if body == "" {
		return false
	}

	env := models.NewEnvelope(s.self, peer, body)
	if err := s.sender.Send(env); err != nil {
		// Fire-and-forget: the transport reconnects on its own and the
		// composer state is reset either way.
		s.log.Warn("send failed", zap.String("peer", peer), zap.Error(err))
	}

	s.mu.Lock()
	if gen == s.uploadGen {
		s.attachment = nil
		s.uploadGen++
	}
	s.mu.Unlock()
	s.notify()
	return true
}
