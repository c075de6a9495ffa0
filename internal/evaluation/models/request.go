package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// Status is the lifecycle state of an evaluation request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusVerified  Status = "VERIFIED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the states that block a new request for the same
// seeker/guide pair. The storage layer enforces at most one row per pair in
// these states.
var ActiveStatuses = []Status{StatusPending, StatusAccepted}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusVerified, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status blocks a new request for the same pair.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

// Listable reports whether the status appears in seeker/guide projections.
// VERIFIED and CANCELLED requests are historical records, not inbox items.
func (s Status) Listable() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Message length bounds for seeker and guide free text.
const (
	MinMessageLen       = 10
	MaxMessageLen       = 150
	MaxModeratorNoteLen = 500
	MaxLocationLen      = 200
)

var scheduledTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// EvaluationRequest is the aggregate for one seeker's evaluation request to
// one guide.
//
// Invariants:
//   - SeekerID != GuideID (no self-request)
//   - At most one request per (SeekerID, GuideID) in an active status
//   - VerificationCode is set iff the request has passed through ACCEPTED
//   - Schedule fields are set iff the request has passed through ACCEPTED
//
// Lifecycle: PENDING -> ACCEPTED | REJECTED; ACCEPTED -> VERIFIED via code
// redemption. There is no automatic expiry: stale requests are only resolved
// by guide action or the explicit code cleanup operation. CANCELLED is
// reserved for storage compatibility; no modeled operation produces it.
type EvaluationRequest struct {
	ID       id.EvaluationID `json:"id"`
	SeekerID id.UserID       `json:"seeker_id"`
	GuideID  id.UserID       `json:"guide_id"`
	Status   Status          `json:"status"`

	// Message is the seeker's pitch, set at creation.
	Message string `json:"message"`

	// Fields below are set when the guide accepts (note also on reject).
	ModeratorMessage string   `json:"moderator_message,omitempty"`
	ScheduledDate    Date     `json:"scheduled_date,omitzero"`
	ScheduledTime    string   `json:"scheduled_time,omitempty"`
	Location         string   `json:"location,omitempty"`
	Equipment        []string `json:"equipment,omitempty"`

	// VerificationCode is the single-use 6-digit code minted on accept. It is
	// retained on VERIFIED rows; single use is enforced by the status gate,
	// not by erasing the value.
	VerificationCode string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvaluationRequest validates creation-time invariants and returns a
// PENDING request. The self-request check runs here so it can never reach
// persistence.
func NewEvaluationRequest(evalID id.EvaluationID, seekerID, guideID id.UserID, message string, now time.Time) (*EvaluationRequest, error) {
	if seekerID.IsNil() || guideID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "seeker and guide identifiers are required")
	}
	if seekerID == guideID {
		return nil, dErrors.New(dErrors.CodeSelfRequestNotAllowed, "cannot request an evaluation from yourself")
	}
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n < MinMessageLen || n > MaxMessageLen {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "message must be between %d and %d characters", MinMessageLen, MaxMessageLen)
	}
	return &EvaluationRequest{
		ID:        evalID,
		SeekerID:  seekerID,
		GuideID:   guideID,
		Status:    StatusPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanResolve checks that the guide may accept or reject this request.
// Use with ApplyAccept/ApplyReject; the store re-checks the PENDING
// precondition as a conditional write so racing resolvers get one winner.
func (r *EvaluationRequest) CanResolve(guideID id.UserID) error {
	if r.GuideID != guideID {
		return dErrors.New(dErrors.CodeNotOwnedByCaller, "request belongs to a different guide")
	}
	if r.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeAlreadyResolved, "request is already %s", strings.ToLower(string(r.Status)))
	}
	return nil
}

// ApplyAccept transitions to ACCEPTED with the validated schedule and the
// minted verification code. Call CanResolve and Schedule.Validate first.
func (r *EvaluationRequest) ApplyAccept(sched Schedule, code string, now time.Time) {
	r.Status = StatusAccepted
	r.ModeratorMessage = sched.ModeratorMessage
	r.ScheduledDate = sched.Date
	r.ScheduledTime = sched.Time
	r.Location = sched.Location
	r.Equipment = sched.Equipment
	r.VerificationCode = code
	r.UpdatedAt = now
}

// ApplyReject transitions to REJECTED with an optional moderator note.
// The rejection timestamp anchors the pair's cooldown window.
func (r *EvaluationRequest) ApplyReject(note string, now time.Time) {
	r.Status = StatusRejected
	r.ModeratorMessage = note
	r.UpdatedAt = now
}

// CanVerify checks that the request is redeemable at all. The date gate is a
// separate concern handled by the redeemer.
func (r *EvaluationRequest) CanVerify() error {
	if r.Status != StatusAccepted {
		return dErrors.New(dErrors.CodeInvalidCode, "verification code is not valid")
	}
	return nil
}

// ApplyVerify transitions to VERIFIED after a successful redemption.
func (r *EvaluationRequest) ApplyVerify(now time.Time) {
	r.Status = StatusVerified
	r.UpdatedAt = now
}

// Schedule is the guide-supplied payload accompanying an accept decision,
// already parsed and validated.
type Schedule struct {
	ModeratorMessage string
	Date             Date
	Time             string
	Location         string
	Equipment        []string
}

// ScheduleInput is the raw accept payload as received from the transport.
type ScheduleInput struct {
	ModeratorMessage string
	Date             string
	Time             string
	Location         string
	// Equipment is comma-separated free text, e.g. "stopwatch, cones".
	Equipment string
}

// Validate parses and validates the raw payload. A past date is accepted;
// the source system never enforced future-only scheduling and same-day
// retroactive entries are legitimate.
func (in ScheduleInput) Validate() (Schedule, error) {
	note := strings.TrimSpace(in.ModeratorMessage)
	if note == "" {
		return Schedule{}, dErrors.New(dErrors.CodeInvalidSchedule, "moderator message is required on accept")
	}
	if utf8.RuneCountInString(note) > MaxModeratorNoteLen {
		return Schedule{}, dErrors.Newf(dErrors.CodeInvalidSchedule, "moderator message must be at most %d characters", MaxModeratorNoteLen)
	}

	location := strings.TrimSpace(in.Location)
	if location == "" {
		return Schedule{}, dErrors.New(dErrors.CodeInvalidSchedule, "location is required on accept")
	}
	if utf8.RuneCountInString(location) > MaxLocationLen {
		return Schedule{}, dErrors.Newf(dErrors.CodeInvalidSchedule, "location must be at most %d characters", MaxLocationLen)
	}

	date, err := ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return Schedule{}, err
	}

	scheduledTime := strings.TrimSpace(in.Time)
	if !scheduledTimePattern.MatchString(scheduledTime) {
		return Schedule{}, dErrors.New(dErrors.CodeInvalidSchedule, "time must be a 24h HH:MM value")
	}

	return Schedule{
		ModeratorMessage: note,
		Date:             date,
		Time:             scheduledTime,
		Location:         location,
		Equipment:        ParseEquipment(in.Equipment),
	}, nil
}

// ValidateModeratorNote checks the optional note on a reject decision.
func ValidateModeratorNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > MaxModeratorNoteLen {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "moderator message must be at most %d characters", MaxModeratorNoteLen)
	}
	return note, nil
}

// ParseEquipment splits comma-separated equipment text into an ordered list,
// trimming whitespace and dropping empty items.
func ParseEquipment(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
