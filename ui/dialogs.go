package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func newDialogForm(title string) *tview.Form {
	form := tview.NewForm()
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetFieldTextColor(ColorFg)
	form.SetLabelColor(ColorHighlight)
	form.SetButtonBackgroundColor(tcell.NewRGBColor(0, 128, 128))
	form.SetButtonTextColor(ColorTitle)
	form.SetBorder(true)
	form.SetBorderColor(ColorBorder)
	form.SetTitle(title)
	form.SetTitleColor(ColorTitle)
	return form
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func (a *App) closeDialog() {
	a.pages.RemovePage("dialog")
	a.app.SetFocus(a.contactsList)
}

func (a *App) showAddContactDialog() {
	form := newDialogForm(" Add Contact ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)

	nameField := tview.NewInputField()
	nameField.SetLabel("Username: ")
	nameField.SetFieldWidth(30)

	form.AddFormItem(nameField)

	form.AddButton("Add", func() {
		username := nameField.GetText()
		if username == "" {
			statusLabel.SetText("Username is required")
			return
		}

		go func() {
			ok, err := a.sess.AddContact(context.Background(), username)
			a.app.QueueUpdateDraw(func() {
				switch {
				case err != nil:
					statusLabel.SetText(fmt.Sprintf("Verification failed: %v", err))
				case !ok:
					statusLabel.SetText("contact does not exist")
				default:
					a.closeDialog()
				}
			})
		}()
	})

	form.AddButton("Cancel", func() {
		a.closeDialog()
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 9, 0, true).
		AddItem(statusLabel, 1, 0, false)

	a.pages.AddPage("dialog", centered(layout, 50, 10), true, true)
	a.app.SetFocus(form)
}

func (a *App) showAttachDialog() {
	if a.sess.Peer() == "" {
		return
	}

	form := newDialogForm(" Attach File ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)

	pathField := tview.NewInputField()
	pathField.SetLabel("File: ")
	pathField.SetFieldWidth(40)

	form.AddFormItem(pathField)

	form.AddButton("Attach", func() {
		path := pathField.GetText()
		if path == "" {
			statusLabel.SetText("Please enter a file path")
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			statusLabel.SetText(fmt.Sprintf("Cannot read file: %v", err))
			return
		}
		a.sess.Attach(filepath.Base(path), bytes.NewReader(data))
		a.closeDialog()
		a.app.SetFocus(a.messageInput)
	})

	form.AddButton("Cancel", func() {
		a.closeDialog()
		a.app.SetFocus(a.messageInput)
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 9, 0, true).
		AddItem(statusLabel, 1, 0, false)

	a.pages.AddPage("dialog", centered(layout, 60, 10), true, true)
	a.app.SetFocus(form)
}
