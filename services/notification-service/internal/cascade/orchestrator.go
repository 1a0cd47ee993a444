package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citaplan/citaplan/services/notification-service/internal/email"
	"github.com/citaplan/citaplan/services/notification-service/internal/push"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
	"github.com/citaplan/citaplan/services/notification-service/internal/sms"
	"github.com/citaplan/citaplan/services/notification-service/internal/whatsapp"
)

// Orchestrator walks the channel cascade for one notification: push first,
// then WhatsApp, SMS, and email, stopping at the first success. Each channel
// is attempted at most once per dispatch; a missing contact detail counts as
// a failed attempt and the cascade moves on.
type Orchestrator struct {
	push     push.Sender
	whatsapp whatsapp.Sender
	sms      sms.Sender
	email    email.Sender

	channelTimeout time.Duration
	logger         *slog.Logger
}

type Config struct {
	Push     push.Sender
	WhatsApp whatsapp.Sender
	SMS      sms.Sender
	Email    email.Sender

	// ChannelTimeout caps each individual channel attempt so one slow
	// provider cannot stall the rest of the cascade.
	ChannelTimeout time.Duration
	Logger         *slog.Logger
}

func New(cfg Config) *Orchestrator {
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 8 * time.Second
	}
	return &Orchestrator{
		push:           cfg.Push,
		whatsapp:       cfg.WhatsApp,
		sms:            cfg.SMS,
		email:          cfg.Email,
		channelTimeout: cfg.ChannelTimeout,
		logger:         cfg.Logger,
	}
}

// Result is the outcome of one full cascade run.
type Result struct {
	Attempts    []reminder.Attempt
	SentChannel reminder.Channel
	Status      reminder.Status
}

// Dispatch runs the cascade for rem with the rendered message. The returned
// status is StatusSent when any channel succeeded, StatusFailed otherwise.
func (o *Orchestrator) Dispatch(ctx context.Context, rem reminder.Reminder, msg Message) Result {
	var res Result
	for _, ch := range reminder.CascadeOrder {
		attempt := o.attempt(ctx, ch, rem, msg)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.OK {
			res.SentChannel = ch
			res.Status = reminder.StatusSent
			return res
		}
		o.logger.Info("channel attempt failed, cascading",
			"reminder_id", rem.ID, "channel", ch, "reason", attempt.Error)
	}
	res.Status = reminder.StatusFailed
	return res
}

func (o *Orchestrator) attempt(ctx context.Context, ch reminder.Channel, rem reminder.Reminder, msg Message) reminder.Attempt {
	attempt := reminder.Attempt{Channel: ch, At: time.Now().UTC()}

	send, missing := o.sendFunc(ch, rem, msg)
	if missing != "" {
		attempt.Error = missing
		return attempt
	}

	ctx, cancel := context.WithTimeout(ctx, o.channelTimeout)
	defer cancel()
	if err := runWithContext(ctx, send); err != nil {
		attempt.Error = err.Error()
		return attempt
	}
	attempt.OK = true
	return attempt
}

// sendFunc resolves the channel to a closure over the right sender and
// recipient, or names the missing contact detail.
func (o *Orchestrator) sendFunc(ch reminder.Channel, rem reminder.Reminder, msg Message) (func(context.Context) error, string) {
	switch ch {
	case reminder.ChannelPush:
		if rem.PatientID == "" {
			return nil, "no app account on file"
		}
		return func(ctx context.Context) error {
			return o.push.Send(ctx, rem.PatientID, msg.Subject, msg.Body)
		}, ""
	case reminder.ChannelWhatsApp:
		if rem.PatientPhone == "" {
			return nil, "no phone number on file"
		}
		return func(ctx context.Context) error {
			return o.whatsapp.Send(ctx, rem.PatientPhone, msg.Body)
		}, ""
	case reminder.ChannelSMS:
		if rem.PatientPhone == "" {
			return nil, "no phone number on file"
		}
		return func(ctx context.Context) error {
			return o.sms.Send(ctx, rem.PatientPhone, msg.Body)
		}, ""
	case reminder.ChannelEmail:
		if rem.PatientEmail == "" {
			return nil, "no email address on file"
		}
		return func(context.Context) error {
			return o.email.Send(rem.PatientEmail, msg.Subject, msg.Body)
		}, ""
	}
	return nil, "unsupported channel"
}

// runWithContext bridges senders without context support (SMTP) into the
// per-channel timeout. A panicking sender becomes a failed attempt; it must
// not take down the cascade.
func runWithContext(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sender panic: %v", r)
			}
		}()
		done <- fn(ctx)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
