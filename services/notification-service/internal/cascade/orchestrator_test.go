package cascade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

type fakePush struct {
	calls int
	err   error
}

func (f *fakePush) ProviderID() string { return "push-fake" }
func (f *fakePush) Send(_ context.Context, _ string, _ string, _ string) error {
	f.calls++
	return f.err
}

type fakeText struct {
	calls int
	err   error
	delay time.Duration
}

func (f *fakeText) ProviderID() string { return "text-fake" }
func (f *fakeText) Send(ctx context.Context, _ string, _ string) error {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

type fakeEmail struct {
	calls int
	err   error
}

func (f *fakeEmail) Send(_ string, _ string, _ string) error {
	f.calls++
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullContact() reminder.Reminder {
	return reminder.Reminder{
		ID:           "rem-1",
		PatientID:    "11111111-1111-1111-1111-111111111111",
		PatientName:  "Ana García",
		PatientEmail: "ana@example.com",
		PatientPhone: "+34600111222",
	}
}

func TestDispatchStopsAtFirstSuccess(t *testing.T) {
	pushS := &fakePush{err: errors.New("device unreachable")}
	waS := &fakeText{}
	smsS := &fakeText{}
	emailS := &fakeEmail{}
	orch := New(Config{Push: pushS, WhatsApp: waS, SMS: smsS, Email: emailS, Logger: testLogger()})

	res := orch.Dispatch(context.Background(), fullContact(), Message{Subject: "s", Body: "b"})

	if res.Status != reminder.StatusSent {
		t.Fatalf("status = %s, want sent", res.Status)
	}
	if res.SentChannel != reminder.ChannelWhatsApp {
		t.Fatalf("sent channel = %s, want whatsapp", res.SentChannel)
	}
	if smsS.calls != 0 || emailS.calls != 0 {
		t.Fatalf("later channels were attempted: sms=%d email=%d", smsS.calls, emailS.calls)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(res.Attempts))
	}
	if res.Attempts[0].OK || res.Attempts[0].Error == "" {
		t.Fatalf("push attempt should be recorded as failed: %+v", res.Attempts[0])
	}
}

func TestDispatchAllChannelsFail(t *testing.T) {
	boom := errors.New("boom")
	orch := New(Config{
		Push:     &fakePush{err: boom},
		WhatsApp: &fakeText{err: boom},
		SMS:      &fakeText{err: boom},
		Email:    &fakeEmail{err: boom},
		Logger:   testLogger(),
	})

	res := orch.Dispatch(context.Background(), fullContact(), Message{})

	if res.Status != reminder.StatusFailed {
		t.Fatalf("status = %s, want failed", res.Status)
	}
	if res.SentChannel != "" {
		t.Fatalf("sent channel = %q, want empty", res.SentChannel)
	}
	if len(res.Attempts) != 4 {
		t.Fatalf("attempts = %d, want 4", len(res.Attempts))
	}
}

func TestDispatchMissingContactCountsAsFailedAttempt(t *testing.T) {
	emailS := &fakeEmail{}
	orch := New(Config{
		Push:     &fakePush{},
		WhatsApp: &fakeText{},
		SMS:      &fakeText{},
		Email:    emailS,
		Logger:   testLogger(),
	})

	rem := fullContact()
	rem.PatientID = ""
	rem.PatientPhone = ""

	res := orch.Dispatch(context.Background(), rem, Message{})

	if res.Status != reminder.StatusSent {
		t.Fatalf("status = %s, want sent", res.Status)
	}
	if res.SentChannel != reminder.ChannelEmail {
		t.Fatalf("sent channel = %s, want email", res.SentChannel)
	}
	if len(res.Attempts) != 4 {
		t.Fatalf("attempts = %d, want 4", len(res.Attempts))
	}
	for _, a := range res.Attempts[:3] {
		if a.OK {
			t.Fatalf("attempt on %s should have failed for missing contact", a.Channel)
		}
		if a.Error == "" {
			t.Fatalf("attempt on %s is missing a reason", a.Channel)
		}
	}
}

func TestDispatchChannelTimeoutCascades(t *testing.T) {
	slow := &fakeText{delay: 500 * time.Millisecond}
	smsS := &fakeText{}
	orch := New(Config{
		Push:           &fakePush{err: errors.New("down")},
		WhatsApp:       slow,
		SMS:            smsS,
		Email:          &fakeEmail{},
		ChannelTimeout: 20 * time.Millisecond,
		Logger:         testLogger(),
	})

	res := orch.Dispatch(context.Background(), fullContact(), Message{})

	if res.Status != reminder.StatusSent {
		t.Fatalf("status = %s, want sent", res.Status)
	}
	if res.SentChannel != reminder.ChannelSMS {
		t.Fatalf("sent channel = %s, want sms after whatsapp timeout", res.SentChannel)
	}
}

type panickingPush struct{}

func (panickingPush) ProviderID() string { return "push-panic" }
func (panickingPush) Send(_ context.Context, _ string, _ string, _ string) error {
	panic("provider sdk blew up")
}

func TestDispatchSenderPanicBecomesFailedAttempt(t *testing.T) {
	waS := &fakeText{}
	orch := New(Config{
		Push:     panickingPush{},
		WhatsApp: waS,
		SMS:      &fakeText{},
		Email:    &fakeEmail{},
		Logger:   testLogger(),
	})

	res := orch.Dispatch(context.Background(), fullContact(), Message{})

	if res.Status != reminder.StatusSent {
		t.Fatalf("status = %s, want sent", res.Status)
	}
	if res.SentChannel != reminder.ChannelWhatsApp {
		t.Fatalf("sent channel = %s, want whatsapp after push panic", res.SentChannel)
	}
	if res.Attempts[0].OK || res.Attempts[0].Error == "" {
		t.Fatalf("push panic should be a recorded failed attempt: %+v", res.Attempts[0])
	}
}

func TestDispatchEachChannelAttemptedOnce(t *testing.T) {
	pushS := &fakePush{err: errors.New("x")}
	waS := &fakeText{err: errors.New("x")}
	smsS := &fakeText{err: errors.New("x")}
	emailS := &fakeEmail{err: errors.New("x")}
	orch := New(Config{Push: pushS, WhatsApp: waS, SMS: smsS, Email: emailS, Logger: testLogger()})

	orch.Dispatch(context.Background(), fullContact(), Message{})

	if pushS.calls != 1 || waS.calls != 1 || smsS.calls != 1 || emailS.calls != 1 {
		t.Fatalf("channels not attempted exactly once: push=%d wa=%d sms=%d email=%d",
			pushS.calls, waS.calls, smsS.calls, emailS.calls)
	}
}
