package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// DatasourceHandler handles datasource HTTP requests.
type DatasourceHandler struct {
	svc *biz.DatasourceService
}

// NewDatasourceHandler creates a new DatasourceHandler.
func NewDatasourceHandler(svc *biz.DatasourceService) *DatasourceHandler {
	return &DatasourceHandler{svc: svc}
}

// DatasourceRequest is the request body for creating or updating a
// datasource.
type DatasourceRequest struct {
	Name      string               `json:"name" binding:"required"`
	Type      model.DatasourceType `json:"type" binding:"required,oneof=aliyun volcengine zabbix"`
	Endpoint  string               `json:"endpoint"`
	Region    string               `json:"region"`
	AccessKey string               `json:"access_key"`
	SecretKey string               `json:"secret_key"`
	Username  string               `json:"username"`
	Password  string               `json:"password"`
}

func (r *DatasourceRequest) toModel() *model.Datasource {
	return &model.Datasource{
		Name:      r.Name,
		Type:      r.Type,
		Endpoint:  r.Endpoint,
		Region:    r.Region,
		AccessKey: r.AccessKey,
		SecretKey: r.SecretKey,
		Username:  r.Username,
		Password:  r.Password,
	}
}

// Create creates a datasource.
func (h *DatasourceHandler) Create(c *gin.Context) {
	var req DatasourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	ds := req.toModel()
	if err := h.svc.Create(c.Request.Context(), ds); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, ds)
}

// Update replaces a datasource.
func (h *DatasourceHandler) Update(c *gin.Context) {
	var req DatasourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	ds := req.toModel()
	ds.ID = c.Param("id")
	if err := h.svc.Update(c.Request.Context(), ds); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, ds)
}

// Delete removes a datasource.
func (h *DatasourceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Get returns one datasource.
func (h *DatasourceHandler) Get(c *gin.Context) {
	ds, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, ds)
}

// List returns a page of datasources.
func (h *DatasourceHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}

// Test checks connectivity of a stored datasource.
func (h *DatasourceHandler) Test(c *gin.Context) {
	if err := h.svc.Test(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"status": "ok"})
}
