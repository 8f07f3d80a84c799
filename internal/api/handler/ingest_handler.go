package handler

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/response"
	"Opportune/internal/service"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	ingestSvc service.IngestService
}

func NewIngestHandler(ingestSvc service.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestSvc: ingestSvc,
	}
}

// IngestPost 帖子入库
func (h *IngestHandler) IngestPost(c *gin.Context) {
	var req dto.PostPayloadDTO
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.ingestSvc.IngestPost(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// IngestOpportunity 机会入库
func (h *IngestHandler) IngestOpportunity(c *gin.Context) {
	var req dto.IngestOpportunityDTO
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.ingestSvc.IngestOpportunity(c.Request.Context(), req.PostID, &req.Draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
