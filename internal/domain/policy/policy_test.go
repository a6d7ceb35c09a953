package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

func fixture() (client, writer, stranger, admin Actor, order *entity.Order) {
	client = Actor{UserID: uuid.New(), Role: valueobject.RoleClient}
	writer = Actor{UserID: uuid.New(), Role: valueobject.RoleWriter}
	stranger = Actor{UserID: uuid.New(), Role: valueobject.RoleWriter}
	admin = Actor{UserID: uuid.New(), Role: valueobject.RoleAdmin}
	writerID := writer.UserID
	order = &entity.Order{ID: uuid.New(), ClientID: client.UserID, WriterID: &writerID, Status: valueobject.OrderStatusInProgress}
	return
}

func TestIsParticipant(t *testing.T) {
	client, writer, stranger, admin, order := fixture()

	assert.True(t, IsParticipant(client, order))
	assert.True(t, IsParticipant(writer, order))
	assert.True(t, IsParticipant(admin, order))
	assert.False(t, IsParticipant(stranger, order))
}

func TestIsOrderOwner_RequiresClientRole(t *testing.T) {
	client, _, _, _, order := fixture()
	impostor := Actor{UserID: client.UserID, Role: valueobject.RoleWriter}

	assert.True(t, IsOrderOwner(client, order))
	assert.False(t, IsOrderOwner(impostor, order))
}

func TestCanViewOrder_AvailableVisibleToWriters(t *testing.T) {
	_, _, stranger, _, order := fixture()

	assert.True(t, apperror.IsNotFound(RequireViewOrder(stranger, order)))

	order.Status = valueobject.OrderStatusAvailable
	assert.NoError(t, RequireViewOrder(stranger, order))

	otherClient := Actor{UserID: uuid.New(), Role: valueobject.RoleClient}
	assert.False(t, CanViewOrder(otherClient, order))
}

func TestCanReviewSubmission(t *testing.T) {
	client, writer, _, admin, order := fixture()

	assert.True(t, CanReviewSubmission(client, order, valueobject.DecisionApprove))
	assert.False(t, CanReviewSubmission(client, order, valueobject.DecisionReject))
	assert.True(t, CanReviewSubmission(admin, order, valueobject.DecisionReject))
	assert.False(t, CanReviewSubmission(writer, order, valueobject.DecisionApprove))
}

func TestIsIntendedReader(t *testing.T) {
	client, writer, _, admin, order := fixture()
	to := writer.UserID

	direct := &entity.Message{OrderID: order.ID, FromUserID: client.UserID, ToUserID: &to}
	assert.True(t, IsIntendedReader(writer, direct))
	assert.False(t, IsIntendedReader(client, direct))
	assert.False(t, IsIntendedReader(admin, direct))
	assert.True(t, CanReadMessage(admin, direct))

	support := &entity.Message{OrderID: order.ID, FromUserID: client.UserID}
	assert.True(t, IsIntendedReader(admin, support))
	assert.False(t, IsIntendedReader(writer, support))
}

func TestRequireRole(t *testing.T) {
	client, _, _, admin, _ := fixture()

	assert.NoError(t, RequireRole(admin, valueobject.RoleAdmin))
	assert.True(t, apperror.IsForbidden(RequireRole(client, valueobject.RoleAdmin, valueobject.RoleWriter)))
	assert.True(t, System().IsSystem())
	assert.Nil(t, System().ID())
}
