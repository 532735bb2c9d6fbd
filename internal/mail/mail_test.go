package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEncodeMultipart(t *testing.T) {
	msg := Message{
		To:       "client@acme.test",
		Subject:  "Quote #7 from Studio North",
		HTMLBody: "<p>hello</p>",
		Attachments: []Attachment{
			{Filename: "quote-7.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 fake")},
		},
	}
	raw := string(encode("quotes@studionorth.test", msg))

	for _, want := range []string{
		"To: client@acme.test",
		"Content-Type: multipart/mixed",
		"Content-Type: text/html; charset=utf-8",
		`filename="quote-7.pdf"`,
		"Content-Transfer-Encoding: base64",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("encoded message missing %q", want)
		}
	}
	if strings.Contains(raw, "%PDF") {
		t.Error("attachment body not base64 encoded")
	}
}

func TestEncodeTextFallback(t *testing.T) {
	raw := string(encode("a@b.test", Message{To: "c@d.test", Subject: "s", TextBody: "plain words"}))
	if !strings.Contains(raw, "text/plain; charset=utf-8") || !strings.Contains(raw, "plain words") {
		t.Fatalf("text fallback not used:\n%s", raw)
	}
}

func TestRecordingDispatcher(t *testing.T) {
	rec := &RecordingDispatcher{}
	if err := rec.Send(context.Background(), Message{To: "x@y.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(rec.Sent()) != 1 {
		t.Fatalf("expected 1 recorded message, got %d", len(rec.Sent()))
	}

	rec.Err = errors.New("down")
	if err := rec.Send(context.Background(), Message{To: "x@y.test"}); err == nil {
		t.Fatal("expected configured error")
	}
	if len(rec.Sent()) != 1 {
		t.Fatal("failed send must not be recorded")
	}
}

func TestSubjectFor(t *testing.T) {
	if got := SubjectFor("Studio North", 42); got != "Quote #42 from Studio North" {
		t.Fatalf("subject = %q", got)
	}
}
