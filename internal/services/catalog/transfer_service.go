package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/detection"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/storage"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// UploadResult 上传结果:登记好的文件元数据加识别服务给出的标签建议
// 建议只是返回给调用方参考,不会自动指派
type UploadResult struct {
	File        FileWithLabels         `json:"file"`
	Suggestions []detection.Suggestion `json:"suggested_labels"`
}

// TransferService 文件内容的上传与下载
// 内容写入对象存储,元数据交给 FileService 登记
type TransferService struct {
	fileService *FileService
	gateway     *storage.Gateway
	detector    detection.Client
}

func NewTransferService(fileService *FileService, gateway *storage.Gateway, detector detection.Client) *TransferService {
	return &TransferService{fileService: fileService, gateway: gateway, detector: detector}
}

// UploadItem 一个待上传的文件
type UploadItem struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// UploadMany 上传一批文件内容并整批登记元数据
// 内容先并发写入对象存储,对象键用 uuid 前缀避免同名覆盖;
// 元数据登记是整批成功或整批失败,失败时已写入的对象成为孤儿,不影响正确性。
// 图片会顺带请求标签建议,识别失败不影响上传结果,只是建议为空
func (s *TransferService) UploadMany(ctx context.Context, actorID uint64, path, description string, items []UploadItem) ([]UploadResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("上传文件不能为空: %w", xerr.ErrInvalidParams)
	}

	reqs := make([]storage.PutRequest, len(items))
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = fmt.Sprintf("uploads/%s/%s", uuid.New().String(), item.Name)
		reqs[i] = storage.PutRequest{
			Key:         keys[i],
			Reader:      item.Reader,
			Size:        item.Size,
			ContentType: item.ContentType,
		}
	}
	urls, err := s.gateway.StoreMany(ctx, reqs)
	if err != nil {
		return nil, err
	}

	inputs := make([]FileInput, len(items))
	resourceURLs := make([]string, len(items))
	for i, item := range items {
		resourceURLs[i] = urls[keys[i]]
		inputs[i] = FileInput{
			Name:        item.Name,
			Path:        path,
			Description: description,
			ResourceURL: resourceURLs[i],
		}
	}
	files, err := s.fileService.BulkCreate(ctx, actorID, inputs)
	if err != nil {
		return nil, err
	}

	results := make([]UploadResult, len(files))
	for i, f := range files {
		results[i] = UploadResult{File: FileWithLabels{File: f}}
	}
	suggestions, err := s.detector.DetectLabels(ctx, resourceURLs)
	if err != nil {
		logger.Warn("label detection failed after upload", zap.Error(err))
	} else {
		for i := range results {
			results[i].Suggestions = suggestions[resourceURLs[i]]
		}
	}
	return results, nil
}

// Upload 上传单个文件,多文件场景见 UploadMany
func (s *TransferService) Upload(ctx context.Context, actorID uint64, name, path, description string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	results, err := s.UploadMany(ctx, actorID, path, description, []UploadItem{
		{Name: name, Reader: reader, Size: size, ContentType: contentType},
	})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// SuggestLabels 为已登记的一批文件请求标签建议
func (s *TransferService) SuggestLabels(ctx context.Context, fileIDs []uint64) (map[uint64][]detection.Suggestion, error) {
	files, err := s.fileService.GetByIDs(ctx, fileIDs)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(files))
	byURL := make(map[string]uint64, len(files))
	for i, f := range files {
		urls[i] = f.ResourceURL
		byURL[f.ResourceURL] = f.ID
	}
	detected, err := s.detector.DetectLabels(ctx, urls)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]detection.Suggestion, len(detected))
	for url, suggestions := range detected {
		out[byURL[url]] = suggestions
	}
	return out, nil
}

// Download 打开单个文件的内容,调用方负责关闭 Reader
func (s *TransferService) Download(ctx context.Context, fileID uint64) (*FileWithLabels, *storage.Object, error) {
	files, err := s.fileService.GetByIDs(ctx, []uint64{fileID})
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.gateway.Fetch(ctx, files[0].ResourceURL)
	if err != nil {
		return nil, nil, err
	}
	return &files[0], obj, nil
}

// PresignedURL 为单个文件生成预签名下载地址
func (s *TransferService) PresignedURL(ctx context.Context, fileID uint64) (string, error) {
	files, err := s.fileService.GetByIDs(ctx, []uint64{fileID})
	if err != nil {
		return "", err
	}
	return s.gateway.PresignedURL(ctx, files[0].ResourceURL)
}

// DownloadZip 把一批文件打包成 zip 写入 w,条目名用文件的完整路径
func (s *TransferService) DownloadZip(ctx context.Context, fileIDs []uint64, w io.Writer) error {
	files, err := s.fileService.GetByIDs(ctx, fileIDs)
	if err != nil {
		return err
	}

	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = f.ResourceURL
	}
	objects, err := s.gateway.FetchMany(ctx, urls)
	if err != nil {
		return err
	}
	defer func() {
		for _, obj := range objects {
			obj.Reader.Close()
		}
	}()

	zw := zip.NewWriter(w)
	for _, f := range files {
		obj := objects[f.ResourceURL]
		// zip 条目名不能以 / 开头
		entry, err := zw.Create(f.FullPath[1:])
		if err != nil {
			return fmt.Errorf("创建 zip 条目 %s 失败: %w", f.FullPath, xerr.ErrInternalServer)
		}
		if _, err := io.Copy(entry, obj.Reader); err != nil {
			return fmt.Errorf("写入 zip 条目 %s 失败: %w", f.FullPath, xerr.ErrInternalServer)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("关闭 zip 失败: %w", xerr.ErrInternalServer)
	}

	logger.Info("zip archive generated", zap.Int("files", len(files)))
	return nil
}
