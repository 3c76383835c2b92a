package service

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/net/resp"
	"github.com/ncobase/todox/paging"
)

// HandleList handles GET /notifications
func (s *Service) HandleList(c *gin.Context) {
	var params paging.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	result, err := s.List(ctx, ctxutil.GetUserID(ctx), params)
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to list notifications"))
		return
	}
	resp.Success(c.Writer, result)
}

// HandleMarkRead handles PUT /notifications/:notification_id/read
func (s *Service) HandleMarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.MarkRead(ctx, ctxutil.GetUserID(ctx), c.Param("notification_id"))
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			resp.Fail(c.Writer, resp.NotFound("notification not found"))
			return
		}
		resp.Fail(c.Writer, resp.InternalServer("operation failed"))
		return
	}
	resp.Success(c.Writer, map[string]any{"message": "notification marked read"})
}

// HandleMarkAllRead handles PUT /notifications/read-all
func (s *Service) HandleMarkAllRead(c *gin.Context) {
	ctx := c.Request.Context()
	count, err := s.MarkAllRead(ctx, ctxutil.GetUserID(ctx))
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("operation failed"))
		return
	}
	resp.Success(c.Writer, map[string]any{"marked": count})
}
