package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
)

// ErrUploadRejected 表示图床明确拒绝了本次上传（success=false或异常状态码）。
// 上传流程不自动重试，失败直接反馈给用户。
var ErrUploadRejected = errors.New("图床拒绝了本次上传")

// uploadResponse 是图床服务的响应外壳。
// 字段名与ImgBB的upload接口对应。
type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client 是图床服务的HTTP客户端
type Client struct {
	uploadURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient 构造一个图床客户端
func NewClient(cfg config.ImageHostConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		uploadURL:  cfg.UploadURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UploadImage 把图片以multipart表单上传到图床，成功时返回托管后的URL。
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	// 1. 构造multipart表单：API密钥 + 图片数据
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("key", c.apiKey); err != nil {
		return "", fmt.Errorf("无法构造上传表单: %w", err)
	}
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("无法构造上传表单: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("无法读取上传的图片: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("无法构造上传表单: %w", err)
	}

	// 2. 发送请求
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("无法构造图床请求: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求图床失败: %w", err)
	}
	defer resp.Body.Close()

	// 3. 解析响应，success=false视为拒绝
	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: 无法解析响应 (HTTP %d)", ErrUploadRejected, resp.StatusCode)
	}
	if !parsed.Success || parsed.Data.URL == "" {
		return "", fmt.Errorf("%w: HTTP %d", ErrUploadRejected, resp.StatusCode)
	}
	return parsed.Data.URL, nil
}
