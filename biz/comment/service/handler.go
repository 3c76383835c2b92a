package service

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/biz/comment/structs"
	todoservice "github.com/ncobase/todox/biz/todo/service"
	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/net/resp"
)

// HandleCreate handles POST /todos/:todo_id/comments
func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	comment, err := s.Create(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, 201, comment)
}

// HandleList handles GET /todos/:todo_id/comments
func (s *Service) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	comments, err := s.ListByTodo(ctx, ctxutil.GetTenantID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, map[string]any{
		"comments": comments,
		"count":    len(comments),
	})
}

// HandleDelete handles DELETE /todos/:todo_id/comments/:comment_id
func (s *Service) HandleDelete(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.Delete(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), c.Param("comment_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, map[string]any{"message": "comment deleted"})
}

func (s *Service) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, todoservice.ErrTodoNotFound):
		resp.Fail(c.Writer, resp.NotFound("todo not found"))
	case errors.Is(err, ErrCommentNotFound):
		resp.Fail(c.Writer, resp.NotFound("comment not found"))
	case errors.Is(err, todoservice.ErrTodoDeleted):
		resp.Fail(c.Writer, resp.Conflict(err.Error()))
	case errors.Is(err, ErrBodyRequired), errors.Is(err, ErrBodyTooLong):
		resp.Fail(c.Writer, resp.UnprocessableEntity(err.Error()))
	default:
		resp.Fail(c.Writer, resp.InternalServer("operation failed"))
	}
}
