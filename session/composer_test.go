package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"chatka/api"
)

var errSendFailed = errors.New("transport down")

func TestSendEligibility(t *testing.T) {
	tests := []struct {
		name string
		peer string
		text string
		sent bool
	}{
		{"no peer selected", "", "hi", false},
		{"empty text", "bob", "", false},
		{"whitespace only", "bob", "   ", false},
		{"plain text", "bob", "hi", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := newTestSession(&fakeBackend{}, sender)
			if tt.peer != "" {
				openSettled(t, s, tt.peer)
			}

			got := s.Send(context.Background(), tt.text)
			if got != tt.sent {
				t.Errorf("Send returned %v, want %v", got, tt.sent)
			}
			want := 0
			if tt.sent {
				want = 1
			}
			if len(sender.sent()) != want {
				t.Errorf("Expected %d envelope(s), got %d", want, len(sender.sent()))
			}
		})
	}
}

func TestSendPlainText(t *testing.T) {
	sender := &fakeSender{}
	s := newTestSession(&fakeBackend{}, sender)
	openSettled(t, s, "bob")

	if !s.Send(context.Background(), "  hi  ") {
		t.Fatal("Expected send to go through")
	}

	envs := sender.sent()
	if len(envs) != 1 {
		t.Fatalf("Expected 1 envelope, got %d", len(envs))
	}
	env := envs[0]
	if env.Type != "message" {
		t.Errorf("Expected envelope type message, got %q", env.Type)
	}
	if env.Chat.From != "alice" || env.Chat.To != "bob" {
		t.Errorf("Unexpected routing %s -> %s", env.Chat.From, env.Chat.To)
	}
	if env.Chat.Message != "hi" {
		t.Errorf("Expected trimmed body %q, got %q", "hi", env.Chat.Message)
	}
}

func TestSendAttachmentOnlyUploadSucceeds(t *testing.T) {
	backend := &fakeBackend{
		uploadFn: func(fileName string) api.UploadResult {
			return api.UploadResult{URL: "/uploads/1-report.pdf", OK: true}
		},
	}
	sender := &fakeSender{}
	s := newTestSession(backend, sender)
	openSettled(t, s, "bob")

	s.Attach("report.pdf", strings.NewReader("%PDF"))
	if !s.Send(context.Background(), "") {
		t.Fatal("Expected attachment-only send to go through")
	}

	envs := sender.sent()
	if len(envs) != 1 {
		t.Fatalf("Expected 1 envelope, got %d", len(envs))
	}
	if envs[0].Chat.Message != "/uploads/1-report.pdf" {
		t.Errorf("Expected body to be the upload url, got %q", envs[0].Chat.Message)
	}
}

func TestSendAttachmentWithTextUploadFails(t *testing.T) {
	backend := &fakeBackend{
		uploadFn: func(fileName string) api.UploadResult {
			return api.UploadResult{} // upload failed
		},
	}
	sender := &fakeSender{}
	s := newTestSession(backend, sender)
	openSettled(t, s, "bob")

	s.Attach("X", strings.NewReader("data"))
	if !s.Send(context.Background(), "hi") {
		t.Fatal("Expected degraded send to go through")
	}

	envs := sender.sent()
	if len(envs) != 1 {
		t.Fatalf("Expected 1 envelope, got %d", len(envs))
	}
	if want := "[attachment: X]\nhi"; envs[0].Chat.Message != want {
		t.Errorf("Expected body %q, got %q", want, envs[0].Chat.Message)
	}
}

func TestSendAttachmentSuccessWithText(t *testing.T) {
	backend := &fakeBackend{
		uploadFn: func(fileName string) api.UploadResult {
			return api.UploadResult{URL: "/uploads/2-pic.png", OK: true}
		},
	}
	sender := &fakeSender{}
	s := newTestSession(backend, sender)
	openSettled(t, s, "bob")

	s.Attach("pic.png", strings.NewReader("png"))
	if !s.Send(context.Background(), "look at this") {
		t.Fatal("Expected send to go through")
	}

	envs := sender.sent()
	if want := "/uploads/2-pic.png\nlook at this"; envs[0].Chat.Message != want {
		t.Errorf("Expected body %q, got %q", want, envs[0].Chat.Message)
	}
}

func TestSendClearsAttachmentRegardlessOfUploadOutcome(t *testing.T) {
	for _, ok := range []bool{true, false} {
		backend := &fakeBackend{
			uploadFn: func(fileName string) api.UploadResult {
				return api.UploadResult{URL: "/uploads/x", OK: ok}
			},
		}
		s := newTestSession(backend, &fakeSender{})
		openSettled(t, s, "bob")

		s.Attach("x.bin", strings.NewReader("data"))
		if s.Snapshot().AttachmentName != "x.bin" {
			t.Fatal("Expected attachment to be pending")
		}
		s.Send(context.Background(), "")
		if got := s.Snapshot().AttachmentName; got != "" {
			t.Errorf("Expected attachment cleared after send (upload ok=%v), still %q", ok, got)
		}
	}
}

func TestClearAttachmentDuringUploadDiscardsResult(t *testing.T) {
	uploading := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		uploadFn: func(fileName string) api.UploadResult {
			close(uploading)
			<-release
			return api.UploadResult{URL: "/uploads/late", OK: true}
		},
	}
	sender := &fakeSender{}
	s := newTestSession(backend, sender)
	openSettled(t, s, "bob")

	s.Attach("slow.bin", strings.NewReader("data"))

	var wg sync.WaitGroup
	wg.Add(1)
	var sent bool
	go func() {
		defer wg.Done()
		sent = s.Send(context.Background(), "")
	}()

	// The user clears the selection while the upload is in flight; the
	// late result must be discarded, not applied.
	<-uploading
	s.ClearAttachment()
	close(release)
	wg.Wait()

	if sent {
		t.Error("Expected abandoned attachment-only send to produce nothing")
	}
	if got := len(sender.sent()); got != 0 {
		t.Errorf("Expected no envelope, got %d", got)
	}
}

func TestSendKeepsTextWhenAttachmentAbandonedMidUpload(t *testing.T) {
	uploading := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		uploadFn: func(fileName string) api.UploadResult {
			close(uploading)
			<-release
			return api.UploadResult{URL: "/uploads/late", OK: true}
		},
	}
	sender := &fakeSender{}
	s := newTestSession(backend, sender)
	openSettled(t, s, "bob")

	s.Attach("slow.bin", strings.NewReader("data"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Send(context.Background(), "just the words")
	}()

	<-uploading
	s.ClearAttachment()
	close(release)
	wg.Wait()

	envs := sender.sent()
	if len(envs) != 1 {
		t.Fatalf("Expected 1 envelope, got %d", len(envs))
	}
	if envs[0].Chat.Message != "just the words" {
		t.Errorf("Expected the late upload result dropped from the body, got %q", envs[0].Chat.Message)
	}
}

func TestSendTransportErrorStillResetsComposer(t *testing.T) {
	sender := &fakeSender{err: errSendFailed}
	s := newTestSession(&fakeBackend{}, sender)
	openSettled(t, s, "bob")

	s.Attach("x.bin", strings.NewReader("data"))
	s.Send(context.Background(), "hello")
	if got := s.Snapshot().AttachmentName; got != "" {
		t.Errorf("Expected attachment cleared even when transport errors, still %q", got)
	}
}
