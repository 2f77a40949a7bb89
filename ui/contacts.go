package ui

import (
	"fmt"
	"time"

	"chatka/presence"
	"chatka/session"
)

func (a *App) updateContactsList(v session.View) {
	if a.contactsList == nil {
		return
	}

	currentIdx := a.contactsList.GetCurrentItem()
	a.contactsList.Clear()

	now := time.Now()
	for _, contact := range v.Contacts {
		p := presence.Status(contact.LastActivity, now)

		var mainText string
		if p.Online {
			mainText = fmt.Sprintf("[green]●[white] %s [gray](%s)", contact.Username, p.Label)
		} else {
			mainText = fmt.Sprintf("[gray]○[white] %s [gray](%s)", contact.Username, p.Label)
		}
		if contact.Username == v.Peer {
			mainText = "[::b]" + mainText
		}

		a.contactsList.AddItem(mainText, "", 0, nil)
	}

	if currentIdx >= 0 && currentIdx < a.contactsList.GetItemCount() {
		a.contactsList.SetCurrentItem(currentIdx)
	}
}
