package handlers

import (
	"net/http"
	"strconv"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/query"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/utils"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/services/catalog"
	"github.com/gin-gonic/gin"
)

// SearchRequest 文件检索请求
type SearchRequest struct {
	Criteria   models.FileSearchCriteria `json:"criteria"`
	Sort       []query.SortField         `json:"sort"`
	PageNumber int                       `json:"page_number"`
	PageSize   int                       `json:"page_size"`
}

type FileHandler struct {
	fileService       *catalog.FileService
	searchService     *catalog.SearchService
	assignmentService *catalog.AssignmentService
}

func NewFileHandler(fileService *catalog.FileService, searchService *catalog.SearchService, assignmentService *catalog.AssignmentService) *FileHandler {
	return &FileHandler{
		fileService:       fileService,
		searchService:     searchService,
		assignmentService: assignmentService,
	}
}

// @Summary 批量登记文件
// @Description 批量登记文件元数据,资源必须已存在于对象存储,完整路径和资源地址在未删除文件中唯一
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.FileInput true "文件列表"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response "资源不存在,列出全部缺失地址"
// @Failure 409 {object} xerr.Response "路径或地址冲突,列出全部冲突项"
// @Router /api/v1/files [post]
func (h *FileHandler) BulkCreate(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var inputs []catalog.FileInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	files, err := h.fileService.BulkCreate(c.Request.Context(), userID, inputs)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, files)
}

// @Summary 批量更新文件
// @Description 批量更新文件元数据,资源地址不可修改
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.FileUpdate true "文件更新列表"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response "文件不存在,列出全部缺失id"
// @Router /api/v1/files [put]
func (h *FileHandler) BulkUpdate(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var updates []catalog.FileUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	files, err := h.fileService.BulkUpdate(c.Request.Context(), userID, updates)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, files)
}

// @Summary 批量删除文件
// @Description 批量软删除文件,提交后异步清除相关指派
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body IDListRequest true "文件id列表"
// @Success 200 {object} xerr.Response
// @Router /api/v1/files [delete]
func (h *FileHandler) BulkDelete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.fileService.BulkDelete(c.Request.Context(), userID, req.IDs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}

// @Summary 按id查询文件
// @Description 按逗号分隔的id列表查询文件及其标签,缺失的id一次性列出
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param ids query string true "文件id列表,如 1,2,3"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Router /api/v1/files [get]
func (h *FileHandler) GetByIDs(c *gin.Context) {
	ids, err := utils.ParseIDList(c.Query("ids"))
	if err != nil || len(ids) == 0 {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的id列表")
		return
	}
	files, err := h.fileService.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, files)
}

// @Summary 检索文件
// @Description 按组合条件分页检索文件,所有条件可选,不认识的排序属性被忽略
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body SearchRequest true "检索条件"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response "条件里的用户名不存在"
// @Router /api/v1/files/search [post]
func (h *FileHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	result, err := h.searchService.Search(c.Request.Context(), &req.Criteria, req.Sort, req.PageNumber, req.PageSize)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	items, err := h.fileService.AttachLabels(result.Items)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, gin.H{
		"items":       items,
		"total_count": result.TotalCount,
		"page_number": result.PageNumber,
		"page_size":   result.PageSize,
	})
}

// @Summary 批量指派标签
// @Description 按 (文件, 标签集合) 列表批量指派,已指派的组合按冲突一次性列出
// @Tags 指派
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.AssignmentRequest true "指派请求列表"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response "文件或标签不存在,分别列出缺失id"
// @Failure 409 {object} xerr.Response "重复指派,列出全部冲突组合"
// @Router /api/v1/assignments [post]
func (h *FileHandler) BulkAssign(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var reqs []catalog.AssignmentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.assignmentService.CreateAssignments(c.Request.Context(), userID, reqs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}

// @Summary 批量解除指派
// @Description 按 (文件, 标签集合) 列表批量解除,未指派的组合静默跳过
// @Tags 指派
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body []catalog.AssignmentRequest true "解除请求列表"
// @Success 200 {object} xerr.Response
// @Router /api/v1/assignments [delete]
func (h *FileHandler) BulkUnassign(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var reqs []catalog.AssignmentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.assignmentService.DeleteAssignments(c.Request.Context(), userID, reqs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}

// @Summary 为文件指派标签
// @Description 把一组标签指派给文件,已指派的组合按冲突报出
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件id"
// @Param data body IDListRequest true "标签id列表"
// @Success 200 {object} xerr.Response
// @Failure 409 {object} xerr.Response "重复指派,列出全部冲突组合"
// @Router /api/v1/files/{id}/labels [post]
func (h *FileHandler) AssignLabels(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的文件id")
		return
	}
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.assignmentService.AssignLabels(c.Request.Context(), userID, fileID, req.IDs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}

// @Summary 解除文件标签
// @Description 解除文件上的一组标签,未指派的组合静默跳过
// @Tags 文件
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件id"
// @Param data body IDListRequest true "标签id列表"
// @Success 200 {object} xerr.Response
// @Router /api/v1/files/{id}/labels [delete]
func (h *FileHandler) UnassignLabels(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的文件id")
		return
	}
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	if err := h.assignmentService.UnassignLabels(c.Request.Context(), userID, fileID, req.IDs); err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, nil)
}
