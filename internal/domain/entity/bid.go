package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Bid struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	WriterID        uuid.UUID
	ProposedRate    decimal.Decimal
	PricePerPage    decimal.Decimal
	TimeNeededHours int
	CoverLetter     string
	Status          valueobject.BidStatus
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BidDetails - ставка вместе с данными заказа и автора для списков.
type BidDetails struct {
	Bid
	OrderTitle         string
	OrderStatus        valueobject.OrderStatus
	OrderPages         int
	WriterName         string
	WriterRating       decimal.Decimal
	WriterVerification valueobject.VerificationStatus
	WriterCompleted    int
}

const maxTimeNeededHours = 24 * 90

func NewBid(orderID, writerID uuid.UUID, proposedRate, pricePerPage decimal.Decimal, timeNeededHours int, coverLetter string, now time.Time) (*Bid, error) {
	rate, err := valueobject.NewAmountUSD(proposedRate)
	if err != nil {
		return nil, err
	}
	perPage, err := valueobject.NewAmountUSD(pricePerPage)
	if err != nil {
		return nil, err
	}
	if timeNeededHours <= 0 || timeNeededHours > maxTimeNeededHours {
		return nil, apperror.Validation("срок выполнения должен быть от 1 часа до 90 дней")
	}
	letter := strings.TrimSpace(coverLetter)
	if n := utf8.RuneCountInString(letter); n < 10 || n > 2000 {
		return nil, apperror.Validation("сопроводительное письмо должно быть от 10 до 2000 символов")
	}

	return &Bid{
		ID:              uuid.New(),
		OrderID:         orderID,
		WriterID:        writerID,
		ProposedRate:    rate,
		PricePerPage:    perPage,
		TimeNeededHours: timeNeededHours,
		CoverLetter:     letter,
		Status:          valueobject.BidStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (b *Bid) review(status valueobject.BidStatus, reviewer uuid.UUID, now time.Time) error {
	if b.Status != valueobject.BidStatusPending {
		return apperror.Transition("ставка уже в статусе %q", b.Status)
	}
	b.Status = status
	b.ReviewedBy = &reviewer
	b.ReviewedAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Bid) Accept(reviewer uuid.UUID, now time.Time) error {
	return b.review(valueobject.BidStatusAccepted, reviewer, now)
}

func (b *Bid) Reject(reviewer uuid.UUID, now time.Time) error {
	return b.review(valueobject.BidStatusRejected, reviewer, now)
}

// Withdraw доступен только автору ставки и только пока она ожидает решения.
func (b *Bid) Withdraw(now time.Time) error {
	if b.Status != valueobject.BidStatusPending {
		return apperror.Transition("нельзя отозвать ставку в статусе %q", b.Status)
	}
	b.Status = valueobject.BidStatusWithdrawn
	b.UpdatedAt = now
	return nil
}

func (b *Bid) IsOwnedBy(writerID uuid.UUID) bool {
	return b.WriterID == writerID
}
