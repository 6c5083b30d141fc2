package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// TaskHandler handles threshold task HTTP requests.
type TaskHandler struct {
	svc *biz.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *biz.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTaskRequest is the request body for creating a threshold task.
// WindowHours defaults to 24 when omitted.
type CreateTaskRequest struct {
	DatasourceID string  `json:"datasource_id" binding:"required"`
	Metric       string  `json:"metric" binding:"required"`
	Instance     string  `json:"instance"`
	WindowHours  int     `json:"window_hours" binding:"omitempty,min=1,max=720"`
	Sensitivity  float64 `json:"sensitivity" binding:"omitempty,gt=0"`
}

// Create creates a threshold task and schedules it for execution.
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	task := &model.ThresholdTask{
		DatasourceID: req.DatasourceID,
		Metric:       req.Metric,
		Instance:     req.Instance,
		Window:       time.Duration(req.WindowHours) * time.Hour,
		Sensitivity:  req.Sensitivity,
	}
	if err := h.svc.Create(c.Request.Context(), task); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, task)
}

// Get returns one task.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, task)
}

// List returns a page of tasks.
func (h *TaskHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}
