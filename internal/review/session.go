package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pawelm/fiszki-api/internal/domain"
	"github.com/pawelm/fiszki-api/internal/generation"
)

// Status is the review-time state of one proposal. It is never persisted;
// only the resulting flashcard type is.
type Status string

// Proposal review states. Every proposal starts rejected; accepted and
// rejected toggle freely, while edited is reachable only through a
// successful SubmitEdit.
const (
	StatusRejected Status = "rejected"
	StatusAccepted Status = "accepted"
	StatusEdited   Status = "edited"
)

// Field names an editable proposal field in UpdateDraft.
type Field string

// Editable proposal fields.
const (
	FieldFront Field = "front"
	FieldBack  Field = "back"
)

// Session state machine errors.
var (
	ErrIndexOutOfRange = errors.New("proposal index out of range")
	ErrCannotSetEdited = errors.New("edited status can only result from submitting an edit")
	ErrInvalidStatus   = errors.New("invalid proposal status")
	ErrNotInEditMode   = errors.New("proposal is not being edited")
	ErrAlreadyEditing  = errors.New("proposal is already being edited")
	ErrUnknownField    = errors.New("unknown editable field")
	ErrSessionSaved    = errors.New("review session already saved")
)

// FieldError is a field-scoped validation failure from UpdateDraft or
// SubmitEdit.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Proposal is the session's view of one AI-proposed flashcard.
type Proposal struct {
	Front  string
	Back   string
	Type   domain.FlashcardType
	Status Status

	// Editing reports whether an edit is in progress; DraftFront and
	// DraftBack hold the uncommitted buffer while it is.
	Editing    bool
	DraftFront string
	DraftBack  string
}

// Session tracks the review state for the proposals of one generation.
// All methods are safe for concurrent use. After a successful bulk save the
// session is permanently locked: every mutating operation and further save
// returns ErrSessionSaved.
type Session struct {
	mu           sync.Mutex
	generationID int64
	userID       uuid.UUID
	proposals    []Proposal
	saved        bool
}

// NewSession starts a review session over the given proposals. Every
// proposal begins in the rejected state.
func NewSession(generationID int64, userID uuid.UUID, proposals []generation.Proposal) *Session {
	items := make([]Proposal, len(proposals))
	for i, p := range proposals {
		items[i] = Proposal{
			Front:  p.Front,
			Back:   p.Back,
			Type:   p.Type,
			Status: StatusRejected,
		}
	}
	return &Session{
		generationID: generationID,
		userID:       userID,
		proposals:    items,
	}
}

// GenerationID returns the generation this session reviews.
func (s *Session) GenerationID() int64 { return s.generationID }

// UserID returns the session owner.
func (s *Session) UserID() uuid.UUID { return s.userID }

// Saved reports whether the session's batch has been persisted.
func (s *Session) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Proposals returns a snapshot of the session's proposals.
func (s *Session) Proposals() []Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Proposal, len(s.proposals))
	copy(out, s.proposals)
	return out
}

// SetStatus assigns accepted or rejected directly. Attempts to set edited
// are rejected: that state only results from SubmitEdit.
func (s *Session) SetStatus(index int, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrSessionSaved
	}
	if index < 0 || index >= len(s.proposals) {
		return ErrIndexOutOfRange
	}
	switch status {
	case StatusAccepted, StatusRejected:
		s.proposals[index].Status = status
		return nil
	case StatusEdited:
		return ErrCannotSetEdited
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// BeginEdit enters edit mode for one proposal, seeding the draft buffer from
// the last committed front and back.
func (s *Session) BeginEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrSessionSaved
	}
	if index < 0 || index >= len(s.proposals) {
		return ErrIndexOutOfRange
	}
	p := &s.proposals[index]
	if p.Editing {
		return ErrAlreadyEditing
	}
	p.Editing = true
	p.DraftFront = p.Front
	p.DraftBack = p.Back
	return nil
}

// CancelEdit discards the in-progress draft and exits edit mode, restoring
// the last committed front and back.
func (s *Session) CancelEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrSessionSaved
	}
	if index < 0 || index >= len(s.proposals) {
		return ErrIndexOutOfRange
	}
	p := &s.proposals[index]
	if !p.Editing {
		return ErrNotInEditMode
	}
	p.Editing = false
	p.DraftFront = ""
	p.DraftBack = ""
	return nil
}

// UpdateDraft writes text into the named field of the in-progress edit
// buffer and validates it. The buffer is updated even when validation fails
// so the caller can keep typing; the returned *FieldError marks the field
// invalid and SubmitEdit will refuse to commit until it passes.
func (s *Session) UpdateDraft(index int, field Field, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrSessionSaved
	}
	if index < 0 || index >= len(s.proposals) {
		return ErrIndexOutOfRange
	}
	p := &s.proposals[index]
	if !p.Editing {
		return ErrNotInEditMode
	}

	switch field {
	case FieldFront:
		p.DraftFront = text
		if err := domain.ValidateFront(text); err != nil {
			return &FieldError{Field: FieldFront, Err: err}
		}
	case FieldBack:
		p.DraftBack = text
		if err := domain.ValidateBack(text); err != nil {
			return &FieldError{Field: FieldBack, Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SubmitEdit commits the draft when both fields pass validation. In one
// step it replaces the committed front/back, marks the proposal
// ai_generated_modified, sets its status to edited, and exits edit mode.
func (s *Session) SubmitEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrSessionSaved
	}
	if index < 0 || index >= len(s.proposals) {
		return ErrIndexOutOfRange
	}
	p := &s.proposals[index]
	if !p.Editing {
		return ErrNotInEditMode
	}
	if err := domain.ValidateFront(p.DraftFront); err != nil {
		return &FieldError{Field: FieldFront, Err: err}
	}
	if err := domain.ValidateBack(p.DraftBack); err != nil {
		return &FieldError{Field: FieldBack, Err: err}
	}

	p.Front = p.DraftFront
	p.Back = p.DraftBack
	p.Type = domain.FlashcardTypeAIModified
	p.Status = StatusEdited
	p.Editing = false
	p.DraftFront = ""
	p.DraftBack = ""
	return nil
}

// EligibleForBulkSave returns the proposals with status accepted or edited,
// in order. This is the exact set "save accepted" persists.
func (s *Session) EligibleForBulkSave() []Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		if p.Status == StatusAccepted || p.Status == StatusEdited {
			out = append(out, p)
		}
	}
	return out
}

// SaveAllSet returns every proposal regardless of status, in order. This is
// the set "save all" persists.
func (s *Session) SaveAllSet() []Proposal {
	return s.Proposals()
}

// markSaved permanently locks the session after a successful bulk save.
func (s *Session) markSaved() {
	s.mu.Lock()
	s.saved = true
	s.mu.Unlock()
}
