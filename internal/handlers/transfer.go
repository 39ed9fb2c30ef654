package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/utils"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/services/catalog"
	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transferService *catalog.TransferService
}

func NewTransferHandler(transferService *catalog.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// @Summary 上传文件
// @Description 上传一批文件内容并登记元数据,图片会返回识别服务给出的标签建议
// @Tags 传输
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "文件内容,可多个"
// @Param path formData string true "逻辑目录,如 /docs/"
// @Param description formData string false "描述"
// @Success 200 {object} xerr.Response
// @Failure 409 {object} xerr.Response "路径冲突,列出全部冲突项"
// @Router /api/v1/files/upload [post]
func (h *TransferHandler) Upload(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的上传表单")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		// 兼容单文件的 file 字段
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "缺少上传文件")
		return
	}
	path := c.PostForm("path")
	if path == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "缺少目录参数")
		return
	}
	description := c.PostForm("description")

	items := make([]catalog.UploadItem, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		src, err := fh.Open()
		if err != nil {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无法读取上传文件")
			return
		}
		defer src.Close()
		items = append(items, catalog.UploadItem{
			Name:        fh.Filename,
			Reader:      src,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	results, err := h.transferService.UploadMany(c.Request.Context(), userID, path, description, items)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, results)
}

// @Summary 下载文件
// @Description 下载单个文件的内容
// @Tags 传输
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "文件id"
// @Success 200 {file} binary
// @Failure 404 {object} xerr.Response
// @Router /api/v1/files/{id}/download [get]
func (h *TransferHandler) Download(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的文件id")
		return
	}

	file, obj, err := h.transferService.Download(c.Request.Context(), fileID)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	defer obj.Reader.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Reader, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Name),
	})
}

// @Summary 预签名下载地址
// @Description 为单个文件生成限时的预签名下载地址
// @Tags 传输
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件id"
// @Success 200 {object} xerr.Response
// @Router /api/v1/files/{id}/url [get]
func (h *TransferHandler) PresignedURL(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的文件id")
		return
	}
	url, err := h.transferService.PresignedURL(c.Request.Context(), fileID)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, gin.H{"url": url})
}

// @Summary 打包下载
// @Description 把一批文件打包成 zip 下载,条目名用文件的完整路径
// @Tags 传输
// @Accept json
// @Produce octet-stream
// @Security BearerAuth
// @Param data body IDListRequest true "文件id列表"
// @Success 200 {file} binary
// @Failure 404 {object} xerr.Response
// @Router /api/v1/files/download-zip [post]
func (h *TransferHandler) DownloadZip(c *gin.Context) {
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="files.zip"`)
	if err := h.transferService.DownloadZip(c.Request.Context(), req.IDs, c.Writer); err != nil {
		// 响应头可能已经发出,只能记录并中断
		xerr.HandleError(c, err)
		return
	}
}

// @Summary 标签建议
// @Description 为一批已登记的图片文件请求识别服务的标签建议,非图片返回空列表
// @Tags 传输
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body IDListRequest true "文件id列表"
// @Success 200 {object} xerr.Response
// @Router /api/v1/files/suggest-labels [post]
func (h *TransferHandler) SuggestLabels(c *gin.Context) {
	var req IDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, err.Error())
		return
	}
	suggestions, err := h.transferService.SuggestLabels(c.Request.Context(), req.IDs)
	if err != nil {
		xerr.HandleError(c, err)
		return
	}
	xerr.Success(c, suggestions)
}
