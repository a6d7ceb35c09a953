package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Submission struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	AssignmentID uuid.UUID
	WriterID     uuid.UUID
	Version      int
	Files        []string
	Message      string
	Status       valueobject.SubmissionStatus
	IsFinal      bool
	ReviewNote   string
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}

// NewSubmission - версия назначается по порядку внутри заказа.
func NewSubmission(a *Assignment, version int, files []string, message string, now time.Time) (*Submission, error) {
	if version < 1 {
		return nil, apperror.Validation("некорректная версия работы")
	}
	msg := strings.TrimSpace(message)
	if utf8.RuneCountInString(msg) > 5000 {
		return nil, apperror.Validation("комментарий к работе не должен превышать 5000 символов")
	}
	if len(files) == 0 && msg == "" {
		return nil, apperror.Validation("нужно приложить файлы или комментарий")
	}
	if files == nil {
		files = []string{}
	}

	return &Submission{
		ID:           uuid.New(),
		OrderID:      a.OrderID,
		AssignmentID: a.ID,
		WriterID:     a.WriterID,
		Version:      version,
		Files:        files,
		Message:      msg,
		Status:       valueobject.SubmissionStatusPending,
		CreatedAt:    now,
	}, nil
}

// Review применяет решение; повторно рассматривать работу нельзя.
func (s *Submission) Review(decision valueobject.ReviewDecision, reviewer uuid.UUID, note string, now time.Time) error {
	if s.Status != valueobject.SubmissionStatusPending {
		return apperror.Transition("работа уже рассмотрена (%q)", s.Status)
	}
	switch decision {
	case valueobject.DecisionApprove:
		s.Status = valueobject.SubmissionStatusApproved
		s.IsFinal = true
	case valueobject.DecisionRevisionRequired:
		s.Status = valueobject.SubmissionStatusRevisionRequired
	case valueobject.DecisionReject:
		s.Status = valueobject.SubmissionStatusRejected
	default:
		return apperror.Validation("некорректное решение по работе")
	}
	s.ReviewNote = strings.TrimSpace(note)
	s.ReviewedBy = &reviewer
	s.ReviewedAt = &now
	return nil
}
