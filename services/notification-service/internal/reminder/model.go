package reminder

import "time"

// Kind says what a notification is about.
type Kind string

const (
	KindConfirmation  Kind = "confirmation"   // right after booking
	KindReminder      Kind = "reminder"       // timed, ahead of the appointment
	KindCancellation  Kind = "cancellation"   // appointment was cancelled
	KindReschedule    Kind = "reschedule"     // appointment was moved
	KindWaitlistOffer Kind = "waitlist_offer" // a freed slot is on offer
	KindPostVisit     Kind = "post_visit"     // follow-up after the appointment
)

func (k Kind) Valid() bool {
	switch k {
	case KindConfirmation, KindReminder, KindCancellation, KindReschedule, KindWaitlistOffer, KindPostVisit:
		return true
	}
	return false
}

// Trigger names the point in time a reminder fires relative to its
// appointment.
type Trigger string

const (
	Trigger24h       Trigger = "24h"
	Trigger2h        Trigger = "2h"
	Trigger1h        Trigger = "1h"
	Trigger30min     Trigger = "30min"
	TriggerDayOf     Trigger = "day_of"
	TriggerCustom    Trigger = "custom"
	TriggerPostVisit Trigger = "post_appointment"
	TriggerImmediate Trigger = "immediate"
)

// Status is the lifecycle of one notification record.
type Status string

const (
	StatusProcessing         Status = "processing"
	StatusSent               Status = "sent"
	StatusFailed             Status = "failed"
	StatusConfirmedByPatient Status = "confirmed_by_patient"
	StatusCancelledByPatient Status = "cancelled_by_patient"
)

// validTransitions is the notification status machine. Dispatch outcomes land
// only on in-flight rows; patient responses only on rows whose link went out.
// A row that failed on every channel never delivered its link, so it takes no
// response.
var validTransitions = map[Status]map[Status]bool{
	StatusProcessing: {
		StatusSent:               true,
		StatusFailed:             true,
		StatusConfirmedByPatient: true,
		StatusCancelledByPatient: true,
	},
	StatusSent: {
		StatusConfirmedByPatient: true,
		StatusCancelledByPatient: true,
	},
}

// CanBecome reports whether the status machine allows moving from s to t.
func (s Status) CanBecome(t Status) bool {
	return validTransitions[s][t]
}

// Channel is a delivery mechanism, in cascade order.
type Channel string

const (
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

// CascadeOrder is the fixed order channels are tried in.
var CascadeOrder = []Channel{ChannelPush, ChannelWhatsApp, ChannelSMS, ChannelEmail}

// Attempt records one channel try within a dispatch.
type Attempt struct {
	Channel Channel   `json:"channel"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Response is what a patient answered through their link.
type Response string

const (
	ResponseConfirmed           Response = "confirmed"
	ResponseCancelled           Response = "cancelled"
	ResponseRescheduleRequested Response = "reschedule_requested"
)

func (r Response) Valid() bool {
	switch r {
	case ResponseConfirmed, ResponseCancelled, ResponseRescheduleRequested:
		return true
	}
	return false
}

// Reminder is one notification to one patient about one appointment or
// waitlist offer. Patient contact is denormalized from the triggering event
// so dispatch needs no cross-service lookup.
type Reminder struct {
	ID              string
	AppointmentID   string
	WaitlistEntryID string
	Kind            Kind
	Trigger         Trigger

	DoctorID        string
	DoctorName      string
	Specialty       string
	HighPrivacy     bool
	Reason          string
	StartTime       time.Time
	DurationMinutes int

	PatientID    string
	PatientName  string
	PatientEmail string
	PatientPhone string

	// OfferedStart is set for waitlist offers; AlternativeSlots for
	// cancellation notices.
	OfferedStart     *time.Time
	AlternativeSlots []time.Time

	Token          string
	TokenExpiresAt time.Time
	Status         Status
	Attempts       []Attempt
	SentChannel    Channel

	PatientResponse *Response
	RespondedAt     *time.Time

	CreatedAt time.Time
}

// Responded reports whether a patient response has been recorded.
func (r *Reminder) Responded() bool {
	return r.PatientResponse != nil
}

// TokenExpiry returns when the response link stops being actionable: the
// offered slot for waitlist offers, 30 days after the visit for post-visit
// follow-ups, the appointment start otherwise. Stamped on the record at
// creation so link validity survives later moves of the appointment.
func (r *Reminder) TokenExpiry() time.Time {
	switch {
	case r.Kind == KindWaitlistOffer && r.OfferedStart != nil:
		return *r.OfferedStart
	case r.Kind == KindPostVisit:
		return r.StartTime.Add(postVisitTokenTTL)
	}
	return r.StartTime
}

// postVisitTokenTTL keeps follow-up links usable for a month after the visit.
const postVisitTokenTTL = 30 * 24 * time.Hour
