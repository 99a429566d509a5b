package handler

import (
	"net/http"

	"civic_feed/internal/domain/notification/service"
	"civic_feed/internal/pkg/middleware"
	"civic_feed/pkg/response"
	"civic_feed/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(s service.NotificationService, log *zap.Logger) *NotificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationHandler{service: s, log: log}
}

// ListNotifications 我的通知
// @Summary 当前用户的通知列表
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=service.NotificationPage}
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	page, err := h.service.ListNotifications(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		h.log.Error("list notifications failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "internal server error")
		return
	}
	response.Success(c, page)
}
