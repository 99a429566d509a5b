package handler

import (
	"errors"
	"net/http"

	"civic_feed/internal/domain/post/service"
	"civic_feed/internal/pkg/middleware"
	"civic_feed/pkg/response"
	"civic_feed/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts    service.PostService
	likes    service.LikeService
	comments service.CommentService
	log      *zap.Logger
}

func NewPostHandler(posts service.PostService, likes service.LikeService, comments service.CommentService, log *zap.Logger) *PostHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostHandler{posts: posts, likes: likes, comments: comments, log: log}
}

// PublishInput 发布动态输入
type PublishInput struct {
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"imageUrl"`
	Location string `json:"location"`
}

// CommentInput 评论输入
type CommentInput struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId"`
}

// PublishPost 发布动态
// @Summary 发布动态
// @Tags Post
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body PublishInput true "动态内容"
// @Success 201 {object} response.Response{data=model.PostView}
// @Router /posts [post]
func (h *PostHandler) PublishPost(c *gin.Context) {
	var input PublishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	view, err := h.posts.PublishPost(c.Request.Context(), middleware.GetUserID(c), input.Content, input.ImageURL, input.Location)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, view)
}

// GetPost 获取动态
// @Summary 获取动态（带实时点赞数）
// @Tags Post
// @Produce json
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response{data=model.PostView}
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	view, err := h.posts.GetPost(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, view)
}

// Like 点赞
// @Summary 点赞
// @Tags Post
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response{data=model.PostView}
// @Failure 400 {object} response.Response "已点赞"
// @Failure 404 {object} response.Response "动态不存在"
// @Router /posts/{id}/like [post]
func (h *PostHandler) Like(c *gin.Context) {
	view, err := h.likes.Like(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, view)
}

// Unlike 取消点赞
// @Summary 取消点赞
// @Tags Post
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response{data=model.PostView}
// @Failure 400 {object} response.Response "未点赞"
// @Router /posts/{id}/unlike [delete]
func (h *PostHandler) Unlike(c *gin.Context) {
	view, err := h.likes.Unlike(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, view)
}

// GetLikers 点赞用户列表
// @Summary 点赞用户列表
// @Tags Post
// @Produce json
// @Param id path string true "动态ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=model.LikersPage}
// @Router /posts/{id}/likers [get]
func (h *PostHandler) GetLikers(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	page, err := h.likes.GetLikers(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, page)
}

// AddComment 发表评论
// @Summary 发表评论或回复
// @Description 回复已在最深层的评论时，会挂到该评论的父评论下，返回的 parentId 为实际父评论
// @Tags Post
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Param input body CommentInput true "评论内容"
// @Success 201 {object} response.Response{data=model.CommentView}
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	view, err := h.comments.AddComment(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Content, input.ParentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, view)
}

// GetComments 获取评论列表
// @Summary 获取两层嵌套的评论
// @Tags Post
// @Produce json
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response{data=[]model.CommentView}
// @Router /posts/{id}/comments [get]
func (h *PostHandler) GetComments(c *gin.Context) {
	views, err := h.comments.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, views)
}

// writeError 业务错误映射为 HTTP 状态码和业务码
func (h *PostHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.ErrPostNotFound, err.Error())
	case errors.Is(err, service.ErrCommentNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCommentNotFound, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeError, err.Error())
	case errors.Is(err, service.ErrAlreadyLiked):
		response.Error(c, http.StatusBadRequest, response.ErrAlreadyLiked, err.Error())
	case errors.Is(err, service.ErrNotLiked):
		response.Error(c, http.StatusBadRequest, response.ErrNotLiked, err.Error())
	case errors.Is(err, service.ErrInvalidParent):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParent, err.Error())
	case errors.Is(err, service.ErrEmptyContent):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	default:
		h.log.Error("post request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", c.GetString(middleware.ContextTraceID)),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "internal server error")
	}
}
