package handler

import (
	"errors"
	"net/http"

	"civic_feed/internal/domain/user/repository"
	"civic_feed/internal/domain/user/service"
	"civic_feed/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	directory service.Directory
}

func NewUserHandler(d service.Directory) *UserHandler {
	return &UserHandler{directory: d}
}

// GetUser 获取用户展示信息
// @Summary 获取用户展示信息
// @Tags User
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response{data=model.Summary}
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	summary, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrUserNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "internal server error")
		return
	}
	response.Success(c, summary)
}
