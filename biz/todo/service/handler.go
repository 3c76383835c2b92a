package service

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	labelservice "github.com/ncobase/todox/biz/label/service"
	"github.com/ncobase/todox/biz/todo/data/repository"
	"github.com/ncobase/todox/biz/todo/structs"
	"github.com/ncobase/todox/ctxutil"
	"github.com/ncobase/todox/net/resp"
	"github.com/ncobase/todox/paging"
	"github.com/ncobase/todox/validator"
)

// HandleCreate handles POST /todos
func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	todo, err := s.Create(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, 201, todo)
}

// HandleList handles GET /todos
func (s *Service) HandleList(c *gin.Context) {
	ctx := c.Request.Context()

	filter := repository.TodoFilter{View: structs.View(c.Query("view"))}
	if status := c.Query("status"); status != "" {
		filter.Status = structs.Status(status)
	}
	if limit := c.Query("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		filter.Offset, _ = strconv.Atoi(offset)
	}

	todos, err := s.List(ctx, ctxutil.GetTenantID(ctx), filter)
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to list todos"))
		return
	}
	resp.Success(c.Writer, map[string]any{
		"todos": todos,
		"count": len(todos),
	})
}

// HandleGet handles GET /todos/:todo_id
func (s *Service) HandleGet(c *gin.Context) {
	ctx := c.Request.Context()
	todo, err := s.Get(ctx, ctxutil.GetTenantID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleUpdate handles PUT /todos/:todo_id
func (s *Service) HandleUpdate(c *gin.Context) {
	var req structs.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	todo, err := s.Update(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleToggle handles POST /todos/:todo_id/toggle
func (s *Service) HandleToggle(c *gin.Context) {
	ctx := c.Request.Context()
	todo, successor, err := s.Toggle(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	body := map[string]any{"todo": todo}
	if successor != nil {
		body["successor"] = successor
	}
	resp.Success(c.Writer, body)
}

// HandleUpdateAssignee handles PUT /todos/:todo_id/assignee
func (s *Service) HandleUpdateAssignee(c *gin.Context) {
	var req structs.UpdateAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	todo, err := s.UpdateAssignee(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), req.AssigneeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleUpdateRecurrence handles PUT /todos/:todo_id/recurrence
func (s *Service) HandleUpdateRecurrence(c *gin.Context) {
	var req structs.UpdateRecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}
	if fields := validator.ValidateStruct(&req); len(fields) > 0 {
		resp.Fail(c.Writer, resp.UnprocessableEntity("validation failed", fields))
		return
	}

	ctx := c.Request.Context()
	todo, err := s.UpdateRecurrence(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx),
		c.Param("todo_id"), structs.Recurrence(req.RecurrenceType))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleReplaceLabels handles PUT /todos/:todo_id/labels
func (s *Service) HandleReplaceLabels(c *gin.Context) {
	var req structs.ReplaceLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	todo, err := s.ReplaceLabels(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), req.LabelIDs)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleArchive handles POST /todos/:todo_id/archive
func (s *Service) HandleArchive(c *gin.Context) {
	ctx := c.Request.Context()
	todo, err := s.Archive(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleTrash handles POST /todos/:todo_id/trash
func (s *Service) HandleTrash(c *gin.Context) {
	ctx := c.Request.Context()
	todo, err := s.Trash(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandleRestore handles POST /todos/:todo_id/restore
func (s *Service) HandleRestore(c *gin.Context) {
	ctx := c.Request.Context()
	todo, err := s.Restore(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, todo)
}

// HandlePurge handles DELETE /todos/:todo_id
func (s *Service) HandlePurge(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.Purge(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id")); err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, "todo permanently deleted")
}

// HandleActivities handles GET /todos/:todo_id/activities
func (s *Service) HandleActivities(c *gin.Context) {
	var params paging.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	result, err := s.Activities(ctx, ctxutil.GetTenantID(ctx), c.Param("todo_id"), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}

// HandleCreateSubtask handles POST /todos/:todo_id/subtasks
func (s *Service) HandleCreateSubtask(c *gin.Context) {
	var req structs.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	subtask, err := s.CreateSubtask(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx), c.Param("todo_id"), &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, 201, subtask)
}

// HandleListSubtasks handles GET /todos/:todo_id/subtasks
func (s *Service) HandleListSubtasks(c *gin.Context) {
	ctx := c.Request.Context()
	subtasks, err := s.ListSubtasks(ctx, ctxutil.GetTenantID(ctx), c.Param("todo_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, map[string]any{
		"subtasks": subtasks,
		"count":    len(subtasks),
	})
}

// HandleUpdateSubtask handles PUT /todos/:todo_id/subtasks/:subtask_id
func (s *Service) HandleUpdateSubtask(c *gin.Context) {
	var req structs.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	subtask, err := s.UpdateSubtask(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx),
		c.Param("todo_id"), c.Param("subtask_id"), &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, subtask)
}

// HandleToggleSubtask handles POST /todos/:todo_id/subtasks/:subtask_id/toggle
func (s *Service) HandleToggleSubtask(c *gin.Context) {
	ctx := c.Request.Context()
	subtask, err := s.ToggleSubtask(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx),
		c.Param("todo_id"), c.Param("subtask_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, subtask)
}

// HandleDeleteSubtask handles DELETE /todos/:todo_id/subtasks/:subtask_id
func (s *Service) HandleDeleteSubtask(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.DeleteSubtask(ctx, ctxutil.GetTenantID(ctx), ctxutil.GetUserID(ctx),
		c.Param("todo_id"), c.Param("subtask_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Success(c.Writer, "subtask deleted")
}

// fail maps service errors onto response envelopes. Cross-tenant and
// missing ids share the same not-found body.
func (s *Service) fail(c *gin.Context, err error) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		resp.Fail(c.Writer, resp.UnprocessableEntity("validation failed", verr.Fields))
	case errors.Is(err, ErrTodoNotFound):
		resp.Fail(c.Writer, resp.NotFound("todo not found"))
	case errors.Is(err, ErrSubtaskNotFound):
		resp.Fail(c.Writer, resp.NotFound("subtask not found"))
	case errors.Is(err, ErrTodoDeleted),
		errors.Is(err, ErrAlreadyArchived),
		errors.Is(err, ErrNotTrashed):
		resp.Fail(c.Writer, resp.Conflict(err.Error()))
	case errors.Is(err, ErrDueDateRequired),
		errors.Is(err, ErrAssigneeNotInTenant),
		errors.Is(err, ErrSubtaskTitleRequired),
		errors.Is(err, ErrSubtaskTitleTooLong),
		errors.Is(err, ErrSubtaskLimit),
		errors.Is(err, labelservice.ErrInvalidLabels):
		resp.Fail(c.Writer, resp.UnprocessableEntity(err.Error()))
	default:
		resp.Fail(c.Writer, resp.InternalServer("operation failed"))
	}
}
