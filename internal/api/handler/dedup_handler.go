package handler

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/response"
	"Opportune/internal/service"

	"github.com/gin-gonic/gin"
)

type DedupHandler struct {
	dedupSvc service.DedupService
}

func NewDedupHandler(dedupSvc service.DedupService) *DedupHandler {
	return &DedupHandler{
		dedupSvc: dedupSvc,
	}
}

// CheckPost 帖子判重
func (h *DedupHandler) CheckPost(c *gin.Context) {
	var req dto.PostCandidateDTO
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.dedupSvc.CheckRedditPostDuplicate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CheckOpportunity 机会判重
func (h *DedupHandler) CheckOpportunity(c *gin.Context) {
	var req dto.OpportunityCandidateDTO
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.dedupSvc.CheckOpportunityDuplicate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CleanupDuplicates 手动触发重复帖子清理
func (h *DedupHandler) CleanupDuplicates(c *gin.Context) {
	res, err := h.dedupSvc.CleanupDuplicatePosts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
