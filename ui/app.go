// Package ui renders the client in the terminal with tview. It owns no
// conversation state: everything it draws comes from session snapshots.
package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rivo/tview"
	"go.uber.org/zap"

	"chatka/api"
	"chatka/config"
	"chatka/session"
	"chatka/transport"
)

// App is the main application.
type App struct {
	app   *tview.Application
	pages *tview.Pages
	cfg   *config.Config
	log   *zap.Logger

	api  *api.Client
	conn *transport.Conn
	sess *session.Session

	contactsList   *tview.List
	chatView       *tview.TextView
	messageInput   *tview.InputField
	attachmentView *tview.TextView
	statusBar      *tview.TextView

	tickerDone chan struct{}
}

// NewApp wires config, logger, backend client, transport and session.
func NewApp(cfg *config.Config, log *zap.Logger) *App {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	apiClient := api.New(cfg.APIBaseURL, httpClient, log)
	conn := transport.New(cfg.WSURL, log)
	sess := session.New(cfg.Username, apiClient, conn, log)

	return &App{
		cfg:  cfg,
		log:  log,
		api:  apiClient,
		conn: conn,
		sess: sess,
	}
}

// Run connects to the backend and starts the terminal UI. It blocks until
// the user quits.
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	mainPage := a.createMainPage()
	a.pages.AddPage("main", mainPage, true, true)

	if err := a.conn.Connect(a.sess.HandleEvent); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := a.conn.Announce(a.cfg.Username); err != nil {
		return fmt.Errorf("announce: %w", err)
	}

	// QueueUpdateDraw blocks until the update ran, and notifications can
	// fire on the event-loop goroutine itself, so hop through a goroutine.
	a.sess.Subscribe(func() {
		go a.app.QueueUpdateDraw(a.refresh)
	})

	go a.sess.RefreshContacts(context.Background())
	a.startRefreshTicker()

	err := a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
	a.stopRefreshTicker()
	a.conn.Close()
	return err
}

// refresh redraws every view from the latest session snapshot.
func (a *App) refresh() {
	v := a.sess.Snapshot()
	a.updateContactsList(v)
	a.updateChatView(v)
	a.updateAttachmentView(v)
}

// startRefreshTicker re-fetches the contact list periodically so presence
// labels track server-side activity, and redraws the relative labels.
func (a *App) startRefreshTicker() {
	a.tickerDone = make(chan struct{})
	go func() {
		fetch := time.NewTicker(30 * time.Second)
		redraw := time.NewTicker(time.Second)
		defer fetch.Stop()
		defer redraw.Stop()
		for {
			select {
			case <-a.tickerDone:
				return
			case <-fetch.C:
				a.sess.RefreshContacts(context.Background())
			case <-redraw.C:
				a.app.QueueUpdateDraw(a.refresh)
			}
		}
	}()
}

func (a *App) stopRefreshTicker() {
	if a.tickerDone != nil {
		close(a.tickerDone)
		a.tickerDone = nil
	}
}

// quit exits the application.
func (a *App) quit() {
	a.app.Stop()
}
