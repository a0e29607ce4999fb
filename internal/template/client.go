package template

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/meme"
)

const (
	// seedUser 是模板导入的表情包的署名
	seedUser = "Imgflip"
	// seedCategory 是模板导入的表情包的默认分类
	seedCategory = "Random"
)

// Template 是模板服务返回的单个模板。
// 字段名与Imgflip的get_memes接口对应。
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

// listResponse 是模板服务的响应外壳
type listResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []Template `json:"memes"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

// Client 是模板服务的HTTP客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 构造一个模板服务客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchTemplates 拉取全部模板。
// 响应是不可信的外部输入：非200、解析失败或success=false都按失败处理。
func (c *Client) FetchTemplates(ctx context.Context) ([]Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("无法构造模板服务请求: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求模板服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("模板服务返回异常状态码: %d", resp.StatusCode)
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("无法解析模板服务的响应: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("模板服务返回失败: %s", parsed.ErrorMessage)
	}
	return parsed.Data.Memes, nil
}

// ToMeme 把一个模板映射为表情包记录：
// 点赞数归零、评论为空、分类和署名使用种子默认值、创建时间取当前时间。
func ToMeme(t Template, now time.Time) meme.Meme {
	return meme.Meme{
		ID:       t.ID,
		Title:    t.Name,
		ImageURL: t.URL,
		User:     seedUser,
		Likes:    0,
		Category: seedCategory,
		Date:     now,
		Comments: []meme.Comment{},
	}
}
