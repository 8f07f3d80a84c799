package handler

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/response"
	"Opportune/internal/pkg/util"
	"Opportune/internal/service"

	"github.com/gin-gonic/gin"
)

type ClusterHandler struct {
	clusterSvc service.ClusterService
}

func NewClusterHandler(clusterSvc service.ClusterService) *ClusterHandler {
	return &ClusterHandler{
		clusterSvc: clusterSvc,
	}
}

// RunPass 立即执行一次聚类，top=true 时只返回高频需求
func (h *ClusterHandler) RunPass(c *gin.Context) {
	topOnly := c.Query("top") == "true"
	res, err := h.clusterSvc.RunClusteringPass(c.Request.Context(), topOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// RunSignalPass 立即执行一次需求信号聚类
func (h *ClusterHandler) RunSignalPass(c *gin.Context) {
	res, err := h.clusterSvc.RunDemandSignalPass(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// List 查询已持久化的簇
func (h *ClusterHandler) List(c *gin.Context) {
	var req dto.ListClustersDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.clusterSvc.ListDemandClusters(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
