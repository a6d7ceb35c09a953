package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// ErrorHandler логирует ошибки запроса и отвечает за обработчик, если тот промолчал.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		entry := logger.Log.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": c.Writer.Status(),
			"code":   apperror.CodeOf(err),
		}).WithError(err)
		if c.Writer.Status() >= http.StatusInternalServerError || apperror.CodeOf(err) == apperror.ErrCodeInternal {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if !c.Writer.Written() {
			response.Error(c, err)
		}
	}
}

// Recovery превращает панику в INTERNAL_ERROR с тем же конвертом ответа.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		}).Error("panic recovered")
		response.Abort(c, apperror.New(apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
	})
}
