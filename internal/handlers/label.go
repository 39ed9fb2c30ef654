package handlers

import (
	"net/http"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/utils"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/services/catalog"
	"github.com/gin-gonic/gin"
)

// IDListRequest 批量删除等操作的 id 列表
type IDListRequest struct {
	IDs []uint64 `json:"ids" binding:"required,min=1"`
}

type LabelHandler struct {
	labelService *catalog.LabelService
}

func NewLabelHandler(labelService *catalog.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

// @Summary 批量创建标签
// @Description 批量创建标签,名称在未删除标签中必须唯一,整批成功或整批失败
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.LabelInput true "标签列表"
// @Success 200 {object} xerr.Response
// @Failure 409 {object} xerr.Response "名称冲突,列出全部冲突项"
// @Router /api/v1/labels [post]
func (h *LabelHandler) BulkCreate(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var inputs []catalog.LabelInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	labels, err := h.labelService.BulkCreate(c.Request.Context(), userID, inputs)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, labels)
}

// @Summary 批量更新标签
// @Description 批量更新标签,只有创建者可以更新,越权的标签会全部列出
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.LabelUpdate true "标签更新列表"
// @Success 200 {object} xerr.Response
// @Failure 403 {object} xerr.Response "非创建者"
// @Failure 404 {object} xerr.Response "标签不存在,列出全部缺失id"
// @Router /api/v1/labels [put]
func (h *LabelHandler) BulkUpdate(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var updates []catalog.LabelUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	labels, err := h.labelService.BulkUpdate(c.Request.Context(), userID, updates)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, labels)
}

// @Summary 批量删除标签
// @Description 批量软删除标签,提交后异步清除相关指派
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body IDListRequest true "标签id列表"
// @Success 200 {object} xerr.Response
// @Failure 403 {object} xerr.Response "非创建者"
// @Router /api/v1/labels [delete]
func (h *LabelHandler) BulkDelete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.labelService.BulkDelete(c.Request.Context(), userID, req.IDs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}

// @Summary 按id查询标签
// @Description 按逗号分隔的id列表查询标签,缺失的id一次性列出
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param ids query string true "标签id列表,如 1,2,3"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Router /api/v1/labels [get]
func (h *LabelHandler) GetByIDs(c *gin.Context) {
	ids, err := utils.ParseIDList(c.Query("ids"))
	if err != nil || len(ids) == 0 {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的id列表")
		return
	}
	labels, err := h.labelService.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, labels)
}

// @Summary 我创建的标签
// @Description 列出当前用户创建的全部标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response
// @Router /api/v1/labels/mine [get]
func (h *LabelHandler) Mine(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	labels, err := h.labelService.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, labels)
}
