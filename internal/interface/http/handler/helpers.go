package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/http/middleware"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// filesField - имя поля multipart-формы с файлами.
	filesField = "files"
)

// getActor достаёт пользователя, проставленного RequireProfile. При отсутствии сразу отвечает 401.
func getActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return policy.Actor{}, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// pageQuery читает limit/offset и приводит их к допустимому диапазону.
func pageQuery(c *gin.Context) (int, int) {
	limit := parseIntQuery(c, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseIntQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUploads открывает файлы из multipart-формы. Вызывающий обязан вызвать release.
func formUploads(c *gin.Context) ([]common.Upload, func(), error) {
	release := func() {}
	if !isMultipart(c) {
		return nil, release, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, release, nil
		}
		return nil, release, apperror.New(apperror.ErrCodeBadRequest, "некорректная multipart-форма")
	}
	headers := form.File[filesField]
	if len(headers) > common.MaxFilesPerUpload {
		return nil, release, apperror.Validation("слишком много файлов в одном запросе")
	}

	opened := make([]multipart.File, 0, len(headers))
	release = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	uploads := make([]common.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			release()
			return nil, func() {}, apperror.New(apperror.ErrCodeBadRequest, "не удалось прочитать файл "+h.Filename)
		}
		opened = append(opened, f)
		uploads = append(uploads, common.Upload{Name: h.Filename, Reader: f})
	}
	return uploads, release, nil
}

// bind разбирает тело запроса: JSON или поля формы, в зависимости от Content-Type.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return false
	}
	return true
}
