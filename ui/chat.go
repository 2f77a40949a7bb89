package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatka/presence"
	"chatka/session"
)

// openConversation switches the active conversation to username.
func (a *App) openConversation(username string) {
	a.sess.Open(context.Background(), username)
	a.app.SetFocus(a.messageInput)
}

// sendCurrentMessage hands the input text to the composer. Upload and
// transmit run off the UI goroutine; the input clears right away, matching
// the composer's reset of the attachment selection.
func (a *App) sendCurrentMessage() {
	text := a.messageInput.GetText()
	if a.sess.Peer() == "" {
		return
	}
	if strings.TrimSpace(text) == "" && a.sess.Snapshot().AttachmentName == "" {
		return
	}
	a.messageInput.SetText("")
	go a.sess.Send(context.Background(), text)
}

func (a *App) chatTitle(v session.View) string {
	if v.Peer == "" {
		return " Select a contact "
	}
	for _, c := range v.Contacts {
		if c.Username == v.Peer {
			p := presence.Status(c.LastActivity, time.Now())
			return fmt.Sprintf(" %s ─ %s ", v.Peer, p.Label)
		}
	}
	return fmt.Sprintf(" %s ", v.Peer)
}

func (a *App) updateChatView(v session.View) {
	if a.chatView == nil {
		return
	}
	a.chatView.SetTitle(a.chatTitle(v))

	var sb strings.Builder
	var lastDay string
	for _, msg := range v.Feed {
		day := messageDay(msg.Timestamp)
		if day != lastDay {
			sb.WriteString(fmt.Sprintf("[gray]── %s ──[-]\n", formatDateSeparator(msg.Timestamp)))
			lastDay = day
		}

		color := "cyan"
		if msg.From == v.Self {
			color = "yellow"
		}
		sb.WriteString(fmt.Sprintf("[gray]%s[-] [%s]%s:[-] %s\n",
			formatMessageTime(msg.Timestamp), color, msg.From, escapeTags(msg.Text)))
	}

	a.chatView.SetText(sb.String())
	a.chatView.ScrollToEnd()
}

func (a *App) updateAttachmentView(v session.View) {
	if a.attachmentView == nil {
		return
	}
	if v.AttachmentName == "" {
		a.attachmentView.SetText("")
		return
	}
	a.attachmentView.SetText(fmt.Sprintf(" [yellow]📎 %s[-] [gray](F9 to clear)[-]", v.AttachmentName))
}
