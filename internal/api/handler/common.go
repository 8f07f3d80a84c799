package handler

import (
	"Opportune/internal/pkg/response"
	"Opportune/internal/pkg/util"
	"Opportune/internal/service"

	"github.com/gin-gonic/gin"
)

// bindJSON 绑定并校验请求体，失败时已写回响应
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return false
	}
	if err := util.ValidateDTO(obj); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
