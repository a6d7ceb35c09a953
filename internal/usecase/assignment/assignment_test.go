package assignment_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/assignment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/usecasetest"
)

type env struct {
	store  *usecasetest.Store
	mine   *assignment.ListMyAssignmentsUseCase
	start  *assignment.StartWorkUseCase
	submit *assignment.SubmitWorkUseCase
	review *assignment.ReviewSubmissionUseCase
	list   *assignment.ListSubmissionsUseCase

	client, writer, admin uuid.UUID
}

func newEnv() *env {
	s := usecasetest.NewStore()
	tr := common.NewTransitioner(s.Orders(), s.History())
	cascade := common.NewCascade(s.Bids(), s.Assignments(), s.Invoices(), s.Disputes())
	return &env{
		store:  s,
		mine:   assignment.NewListMyAssignmentsUseCase(s.Assignments()),
		start:  assignment.NewStartWorkUseCase(s.Transactor(), s.Assignments(), s.Orders(), tr, s.Notifier),
		submit: assignment.NewSubmitWorkUseCase(s.Transactor(), s.Assignments(), s.Orders(), s.Submissions(), tr, s.Files, s.Notifier),
		review: assignment.NewReviewSubmissionUseCase(s.Transactor(), s.Submissions(), s.Orders(), s.Writers(), tr, cascade, s.Notifier),
		list:   assignment.NewListSubmissionsUseCase(s.Submissions(), s.Orders()),
		client: s.AddUser(valueobject.RoleClient),
		writer: s.AddUser(valueobject.RoleWriter),
		admin:  s.AddUser(valueobject.RoleAdmin),
	}
}

// seed возвращает заказ и его активное назначение.
func (e *env) seed(t *testing.T, status valueobject.OrderStatus) (*entity.Order, entity.Assignment) {
	t.Helper()
	o := e.store.SeedOrder(e.client, status, &e.writer)
	list := e.store.AssignmentsOf(o.ID)
	require.Len(t, list, 1)
	return o, list[0]
}

func (e *env) submitFile(t *testing.T, a entity.Assignment, name string) *assignment.SubmitWorkResult {
	t.Helper()
	res, err := e.submit.Execute(context.Background(), assignment.SubmitWorkInput{
		Actor:        e.store.Actor(e.writer),
		AssignmentID: a.ID,
		Message:      "готово",
		Files:        []common.Upload{{Name: name, Reader: strings.NewReader("content")}},
	})
	require.NoError(t, err)
	return res
}

func TestStartWork(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	o, a := e.seed(t, valueobject.OrderStatusAssigned)

	other := e.store.AddUser(valueobject.RoleWriter)
	_, err := e.start.Execute(ctx, e.store.Actor(other), a.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := e.start.Execute(ctx, e.store.Actor(e.writer), a.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.OrderStatusInProgress, got.Status)

	_, err = e.start.Execute(ctx, e.store.Actor(e.writer), a.ID)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	assert.Equal(t, valueobject.OrderStatusInProgress, e.store.Order(o.ID).Status)

	mine, err := e.mine.Execute(ctx, e.store.Actor(e.writer), "active")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.Title, mine[0].OrderTitle)
}

func TestSubmitWork(t *testing.T) {
	ctx := context.Background()

	t.Run("сдача из assigned сначала переводит заказ в работу", func(t *testing.T) {
		e := newEnv()
		o, a := e.seed(t, valueobject.OrderStatusAssigned)

		res := e.submitFile(t, a, "essay.docx")
		assert.Equal(t, 1, res.Submission.Version)
		assert.Equal(t, valueobject.OrderStatusSubmitted, e.store.Order(o.ID).Status)
		require.Len(t, res.Submission.Files, 1)
		assert.True(t, strings.HasPrefix(res.Submission.Files[0], string(valueobject.BucketSubmissionFiles)+"/"))
		assert.Equal(t, 1, e.store.Notifier.Received(e.client, common.EventSubmissionCreated))

		history, err := e.store.History().ListByOrder(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, valueobject.EventWorkStarted, history[0].Event)
		assert.Equal(t, valueobject.EventWorkSubmitted, history[1].Event)
	})

	t.Run("версии растут после доработки", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)

		first := e.submitFile(t, a, "v1.docx")
		_, err := e.review.Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.client),
			SubmissionID: first.Submission.ID,
			Decision:     "revision_required",
			Note:         "нужны источники",
		})
		require.NoError(t, err)

		second := e.submitFile(t, a, "v2.docx")
		assert.Equal(t, 2, second.Submission.Version)
	})

	t.Run("нельзя сдать повторно до проверки", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)
		e.submitFile(t, a, "v1.docx")

		_, err := e.submit.Execute(ctx, assignment.SubmitWorkInput{
			Actor:        e.store.Actor(e.writer),
			AssignmentID: a.ID,
			Files:        []common.Upload{{Name: "v2.docx", Reader: strings.NewReader("x")}},
		})
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
		assert.Equal(t, 1, e.store.Files.Count(), "файл неудачной сдачи удалён")
	})

	t.Run("пустая сдача", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)
		_, err := e.submit.Execute(ctx, assignment.SubmitWorkInput{Actor: e.store.Actor(e.writer), AssignmentID: a.ID})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("ошибка записи удаляет загруженные файлы", func(t *testing.T) {
		e := newEnv()
		o, a := e.seed(t, valueobject.OrderStatusInProgress)
		e.store.FailNext("submissions.create", apperror.New(apperror.ErrCodeDatabaseError, "boom"))

		_, err := e.submit.Execute(ctx, assignment.SubmitWorkInput{
			Actor:        e.store.Actor(e.writer),
			AssignmentID: a.ID,
			Files:        []common.Upload{{Name: "a.docx", Reader: strings.NewReader("x")}},
		})
		require.Error(t, err)
		assert.Zero(t, e.store.Files.Count())
		assert.Equal(t, valueobject.OrderStatusInProgress, e.store.Order(o.ID).Status)
	})
}

func TestReviewSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("approve завершает заказ и обновляет рейтинг", func(t *testing.T) {
		e := newEnv()
		o, a := e.seed(t, valueobject.OrderStatusInProgress)
		sub := e.submitFile(t, a, "final.docx")
		rating := 5

		res, err := e.review.Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.client),
			SubmissionID: sub.Submission.ID,
			Decision:     "approve",
			Rating:       &rating,
		})
		require.NoError(t, err)
		assert.True(t, res.Submission.IsFinal)
		assert.Equal(t, valueobject.SubmissionStatusApproved, res.Submission.Status)
		assert.Equal(t, valueobject.OrderStatusCompleted, e.store.Order(o.ID).Status)
		assert.Equal(t, valueobject.AssignmentStatusCompleted, e.store.AssignmentsOf(o.ID)[0].Status)

		w := e.store.Writer(e.writer)
		assert.Equal(t, 1, w.CompletedOrders)
		assert.True(t, w.Rating.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, 1, e.store.Notifier.Received(e.writer, common.EventSubmissionReviewed))
	})

	t.Run("клиент не может отклонить работу", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)
		sub := e.submitFile(t, a, "v1.docx")

		_, err := e.review.Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.client),
			SubmissionID: sub.Submission.ID,
			Decision:     "reject",
		})
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("администратор отклоняет работу", func(t *testing.T) {
		e := newEnv()
		o, a := e.seed(t, valueobject.OrderStatusInProgress)
		sub := e.submitFile(t, a, "v1.docx")

		res, err := e.review.Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.admin),
			SubmissionID: sub.Submission.ID,
			Decision:     "reject",
			Note:         "плагиат",
		})
		require.NoError(t, err)
		assert.Equal(t, valueobject.SubmissionStatusRejected, res.Submission.Status)
		assert.Equal(t, valueobject.OrderStatusRevisionRequested, e.store.Order(o.ID).Status)
	})

	t.Run("повторная проверка", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)
		sub := e.submitFile(t, a, "v1.docx")
		in := assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.client),
			SubmissionID: sub.Submission.ID,
			Decision:     "revision_required",
		}
		_, err := e.review.Execute(ctx, in)
		require.NoError(t, err)
		_, err = e.review.Execute(ctx, in)
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	})

	t.Run("автор не проверяет свою работу", func(t *testing.T) {
		e := newEnv()
		_, a := e.seed(t, valueobject.OrderStatusInProgress)
		sub := e.submitFile(t, a, "v1.docx")

		_, err := e.review.Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        e.store.Actor(e.writer),
			SubmissionID: sub.Submission.ID,
			Decision:     "approve",
		})
		assert.True(t, apperror.IsForbidden(err))
	})
}

func TestListSubmissions(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	o, a := e.seed(t, valueobject.OrderStatusInProgress)
	e.submitFile(t, a, "v1.docx")

	for _, id := range []uuid.UUID{e.client, e.writer, e.admin} {
		list, err := e.list.Execute(ctx, e.store.Actor(id), o.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}

	stranger := e.store.AddUser(valueobject.RoleWriter)
	_, err := e.list.Execute(ctx, e.store.Actor(stranger), o.ID)
	assert.True(t, apperror.IsNotFound(err))
}
