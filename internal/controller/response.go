package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/apperr"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{Code: 0, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, dto.Response{Code: 0, Message: message, Data: data})
}

// respondError 业务错误按类别映射状态码，非业务错误记录日志并隐藏细节
func respondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}

	if !appErr.Operational {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("kind", string(appErr.Kind)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	_ = c.Error(err)

	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Code:    status,
		Message: appErr.Message,
		Error:   string(appErr.Kind),
	})
}

// respondBindError 请求体/参数校验失败
func respondBindError(c *gin.Context, err error) {
	respondError(c, apperr.Validation(err.Error()))
}

// parseIDParam 解析路径中的正整数 ID
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}
