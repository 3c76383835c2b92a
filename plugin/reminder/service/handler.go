package service

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ncobase/todox/net/resp"
)

// HandlePost handles POST /jobs/reminders
func (s *Service) HandlePost(c *gin.Context) {
	job, err := s.RunScan(c.Request.Context())
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to start reminder scan"))
		return
	}
	resp.WithStatusCode(c.Writer, 202, job)
}

// HandleList handles GET /jobs/reminders
func (s *Service) HandleList(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	jobs, err := s.ListJobs(c.Request.Context(), limit)
	if err != nil {
		resp.Fail(c.Writer, resp.InternalServer("failed to list reminder jobs"))
		return
	}
	resp.Success(c.Writer, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// HandleGet handles GET /jobs/reminders/:job_id
func (s *Service) HandleGet(c *gin.Context) {
	job, err := s.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			resp.Fail(c.Writer, resp.NotFound("reminder job not found"))
			return
		}
		resp.Fail(c.Writer, resp.InternalServer("operation failed"))
		return
	}
	resp.Success(c.Writer, job)
}
