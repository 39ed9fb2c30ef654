package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Suggestion 识别服务返回的一条标签建议
type Suggestion struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Client 图像标签识别客户端
// 只支持图片格式,其他格式直接返回空建议,不调用识别服务
type Client interface {
	DetectLabels(ctx context.Context, urls []string) (map[string][]Suggestion, error)
}

// 识别服务支持的图片格式
var supportedFormats = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// SupportedFormat 判断资源地址的扩展名是否支持标签识别
func SupportedFormat(rawURL string) bool {
	ext := strings.ToLower(path.Ext(strings.SplitN(rawURL, "?", 2)[0]))
	_, ok := supportedFormats[ext]
	return ok
}

type httpClient struct {
	endpoint      string
	apiKey        string
	workers       int
	maxLabels     int
	minConfidence float64
	client        *http.Client
}

var _ Client = (*httpClient)(nil)

// NewClient 创建识别客户端
func NewClient(cfg *config.DetectionConfig) Client {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
		workers:       workers,
		maxLabels:     cfg.MaxLabels,
		minConfidence: cfg.MinConfidence,
		client:        &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	ImageURL      string  `json:"image_url"`
	MaxLabels     int     `json:"max_labels"`
	MinConfidence float64 `json:"min_confidence"`
}

type detectResponse struct {
	Labels []Suggestion `json:"labels"`
}

// DetectLabels 并发识别一批资源,返回资源地址到建议列表的映射
// 不支持的格式对应空列表;任何一个识别请求失败都会使整批失败
func (c *httpClient) DetectLabels(ctx context.Context, urls []string) (map[string][]Suggestion, error) {
	results := make(map[string][]Suggestion, len(urls))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)
	for _, rawURL := range urls {
		rawURL := rawURL
		if !SupportedFormat(rawURL) {
			results[rawURL] = nil
			continue
		}
		eg.Go(func() error {
			suggestions, err := c.detectOne(egCtx, rawURL)
			if err != nil {
				return err
			}
			mu.Lock()
			results[rawURL] = suggestions
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *httpClient) detectOne(ctx context.Context, rawURL string) ([]Suggestion, error) {
	body, err := json.Marshal(detectRequest{
		ImageURL:      rawURL,
		MaxLabels:     c.maxLabels,
		MinConfidence: c.minConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("编码识别请求失败: %w", xerr.ErrDetectionError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造识别请求失败: %w", xerr.ErrDetectionError)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("调用识别服务失败", zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("调用识别服务失败: %w", xerr.ErrDetectionError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("识别服务返回异常状态", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("识别服务返回状态 %d: %w", resp.StatusCode, xerr.ErrDetectionError)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析识别响应失败: %w", xerr.ErrDetectionError)
	}

	// 服务端没按阈值过滤时在客户端兜底
	suggestions := make([]Suggestion, 0, len(out.Labels))
	for _, s := range out.Labels {
		if s.Confidence >= c.minConfidence {
			suggestions = append(suggestions, s)
		}
	}
	if c.maxLabels > 0 && len(suggestions) > c.maxLabels {
		suggestions = suggestions[:c.maxLabels]
	}
	return suggestions, nil
}
