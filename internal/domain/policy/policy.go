// Package policy - явные проверки прав доступа по ролям и строкам.
// Каждый use case вызывает их до чтения или изменения данных.
package policy

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// Actor - тот, от чьего имени выполняется действие.
type Actor struct {
	UserID uuid.UUID
	Role   valueobject.Role
}

// System - фоновые задачи.
func System() Actor {
	return Actor{UserID: uuid.Nil, Role: valueobject.RoleAdmin}
}

func (a Actor) IsSystem() bool {
	return a.UserID == uuid.Nil
}

func (a Actor) IsAdmin() bool {
	return a.Role == valueobject.RoleAdmin
}

// ID возвращает указатель на идентификатор или nil для системных действий.
func (a Actor) ID() *uuid.UUID {
	if a.IsSystem() {
		return nil
	}
	id := a.UserID
	return &id
}

func HasRole(a Actor, roles ...valueobject.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// RequireRole возвращает ErrForbidden, если роли нет в списке.
func RequireRole(a Actor, roles ...valueobject.Role) error {
	if !HasRole(a, roles...) {
		return apperror.ErrForbidden
	}
	return nil
}

func IsOrderOwner(a Actor, o *entity.Order) bool {
	return a.Role == valueobject.RoleClient && o.IsOwnedBy(a.UserID)
}

func IsWriterAssignedToOrder(a Actor, o *entity.Order) bool {
	return a.Role == valueobject.RoleWriter && o.IsAssignedTo(a.UserID)
}

// IsParticipant - владелец, назначенный автор или администратор.
func IsParticipant(a Actor, o *entity.Order) bool {
	return a.IsAdmin() || IsOrderOwner(a, o) || IsWriterAssignedToOrder(a, o)
}

// CanViewOrder: участники всегда, остальные авторы - пока заказ открыт для ставок.
func CanViewOrder(a Actor, o *entity.Order) bool {
	if IsParticipant(a, o) {
		return true
	}
	return a.Role == valueobject.RoleWriter && o.Status == valueobject.OrderStatusAvailable
}

func RequireParticipant(a Actor, o *entity.Order) error {
	if !IsParticipant(a, o) {
		return apperror.ErrForbidden
	}
	return nil
}

func RequireViewOrder(a Actor, o *entity.Order) error {
	if !CanViewOrder(a, o) {
		// не раскрываем существование чужого заказа
		return apperror.ErrOrderNotFound
	}
	return nil
}

// CanReviewSubmission - решение по работе принимает клиент-владелец или администратор.
func CanReviewSubmission(a Actor, o *entity.Order, decision valueobject.ReviewDecision) bool {
	if a.IsAdmin() {
		return true
	}
	return IsOrderOwner(a, o) && decision != valueobject.DecisionReject
}

// CanReadMessage - сообщение видят отправитель, адресат и администраторы.
func CanReadMessage(a Actor, m *entity.Message) bool {
	return a.IsAdmin() || m.FromUserID == a.UserID || m.IsAddressedTo(a.UserID)
}

// IsIntendedReader - только адресат может отметить сообщение прочитанным.
func IsIntendedReader(a Actor, m *entity.Message) bool {
	if m.IsForAdmins() {
		return a.IsAdmin()
	}
	return m.IsAddressedTo(a.UserID)
}

// CanDecideBid - решение по ставке: администратор или клиент заказа.
func CanDecideBid(a Actor, o *entity.Order) bool {
	return a.IsAdmin() || IsOrderOwner(a, o)
}
