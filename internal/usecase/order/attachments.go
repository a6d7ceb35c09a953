package order

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type AddAttachmentsUseCase struct {
	orderRepo repository.OrderRepository
	files     repository.FileStore
}

func NewAddAttachmentsUseCase(orderRepo repository.OrderRepository, files repository.FileStore) *AddAttachmentsUseCase {
	return &AddAttachmentsUseCase{orderRepo: orderRepo, files: files}
}

// Execute сохраняет файлы и дописывает пути в заказ; если запись не удалась, файлы удаляются.
func (uc *AddAttachmentsUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID, files []common.Upload) (*entity.Order, error) {
	if len(files) == 0 {
		return nil, apperror.Validation("нужно приложить хотя бы один файл")
	}
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(actor, order); err != nil {
		return nil, err
	}
	if !policy.IsOrderOwner(actor, order) {
		return nil, apperror.ErrForbidden
	}
	if order.Status.IsTerminal() {
		return nil, apperror.Transition("нельзя менять вложения заказа в статусе %q", order.Status)
	}

	paths, err := common.StoreAll(ctx, uc.files, valueobject.BucketOrderAttachments, actor.UserID, files)
	if err != nil {
		return nil, err
	}
	if err := uc.orderRepo.AppendAttachments(ctx, order.ID, paths); err != nil {
		common.Discard(ctx, uc.files, paths)
		return nil, err
	}
	order.Attachments = append(order.Attachments, paths...)
	return order, nil
}

// OpenFileUseCase отдаёт файл, только если он относится к заказу, который видит пользователь.
type OpenFileUseCase struct {
	orderRepo repository.OrderRepository
	files     repository.FileStore
}

func NewOpenFileUseCase(orderRepo repository.OrderRepository, files repository.FileStore) *OpenFileUseCase {
	return &OpenFileUseCase{orderRepo: orderRepo, files: files}
}

func (uc *OpenFileUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID, path string) (io.ReadCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.Contains(path, "..") {
		return nil, apperror.ErrFileNotFound
	}
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(actor, order); err != nil {
		return nil, err
	}

	var viewer *uuid.UUID
	if !actor.IsAdmin() {
		viewer = &actor.UserID
	}
	ok, err := uc.orderRepo.ReferencesFile(ctx, order.ID, path, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrFileNotFound
	}
	return uc.files.Open(ctx, path)
}
