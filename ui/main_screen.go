package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) createMainPage() tview.Primitive {
	// Contacts list on the left
	a.contactsList = tview.NewList()
	a.contactsList.SetBorder(true)
	a.contactsList.SetBorderColor(ColorBorder)
	a.contactsList.SetBackgroundColor(ColorBg)
	a.contactsList.SetTitle(fmt.Sprintf(" Contacts [%s] ", a.cfg.Username))
	a.contactsList.SetTitleColor(ColorTitle)
	a.contactsList.SetMainTextColor(ColorFg)
	a.contactsList.SetMainTextStyle(tcell.StyleDefault.Foreground(ColorFg).Background(ColorBg))
	a.contactsList.SetSelectedTextColor(ColorTitle)
	a.contactsList.SetSelectedBackgroundColor(tcell.NewRGBColor(0, 128, 128))
	a.contactsList.SetHighlightFullLine(true)
	a.contactsList.ShowSecondaryText(false)

	a.contactsList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		contacts := a.sess.Snapshot().Contacts
		if index < len(contacts) {
			a.openConversation(contacts[index].Username)
		}
	})

	// Chat history view
	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTitle(" Select a contact ")
	a.chatView.SetTitleColor(ColorTitle)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)
	a.chatView.ScrollToEnd()

	// Pending attachment indicator
	a.attachmentView = tview.NewTextView()
	a.attachmentView.SetBackgroundColor(ColorBg)
	a.attachmentView.SetTextColor(ColorFg)
	a.attachmentView.SetDynamicColors(true)

	// Message input
	a.messageInput = tview.NewInputField()
	a.messageInput.SetLabel("> ")
	a.messageInput.SetFieldWidth(0)
	a.messageInput.SetBackgroundColor(ColorBg)
	a.messageInput.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	a.messageInput.SetFieldTextColor(ColorFg)
	a.messageInput.SetLabelColor(ColorHighlight)
	a.messageInput.SetBorder(true)
	a.messageInput.SetBorderColor(ColorBorder)
	a.messageInput.SetTitle(" Message ")
	a.messageInput.SetTitleColor(ColorTitle)

	a.messageInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.sendCurrentMessage()
		}
	})

	// Status bar
	a.statusBar = tview.NewTextView()
	a.statusBar.SetBackgroundColor(tcell.NewRGBColor(0, 128, 128))
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.statusBar.SetText(" F2:Add Contact | F5:Refresh | F7:Attach | F9:Clear Attachment | Tab:Switch Focus | F10:Quit ")

	chatFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.attachmentView, 1, 0, false).
		AddItem(a.messageInput, 3, 0, true)

	mainFlex := tview.NewFlex().
		AddItem(a.contactsList, 30, 0, true).
		AddItem(chatFlex, 0, 1, false)

	rootFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainFlex, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	rootFlex.SetBackgroundColor(ColorBg)

	rootFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF2:
			a.showAddContactDialog()
			return nil
		case tcell.KeyF5:
			go a.sess.RefreshContacts(context.Background())
			return nil
		case tcell.KeyF7:
			a.showAttachDialog()
			return nil
		case tcell.KeyF9:
			a.sess.ClearAttachment()
			return nil
		case tcell.KeyF10:
			a.quit()
			return nil
		case tcell.KeyTab:
			if a.app.GetFocus() == a.contactsList {
				a.app.SetFocus(a.messageInput)
			} else {
				a.app.SetFocus(a.contactsList)
			}
			return nil
		}
		return event
	})

	return rootFlex
}
