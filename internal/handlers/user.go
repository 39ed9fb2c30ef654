package handlers

import (
	"github.com/3Eeeecho/go-filelabel/internal/pkg/utils"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService admin.UserService
}

func NewUserHandler(userService admin.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary 当前用户信息
// @Description 获取当前登录用户的资料
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response "未登录"
// @Router /api/v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserProfile(userID)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, user)
}
