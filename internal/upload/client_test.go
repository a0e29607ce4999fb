package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
)

func newTestClient(uploadURL string) *Client {
	return NewClient(config.ImageHostConfig{
		UploadURL: uploadURL,
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
	})
}

func TestUploadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("无法解析multipart表单: %v", err)
		}
		if got := r.FormValue("key"); got != "test-key" {
			t.Errorf("API密钥应随表单提交, 实际: %q", got)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("表单中应包含image文件: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "cat.png" {
				t.Errorf("文件名不正确: %q", header.Filename)
			}
			data, _ := io.ReadAll(file)
			if string(data) != "fake png bytes" {
				t.Errorf("文件内容不正确: %q", data)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "status": 200, "data": {"url": "https://i.ibb.co/abc/cat.png"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	url, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("UploadImage失败: %v", err)
	}
	if url != "https://i.ibb.co/abc/cat.png" {
		t.Fatalf("返回的URL不正确: %q", url)
	}
}

func TestUploadImageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": false, "status": 400}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("x")); !errors.Is(err, ErrUploadRejected) {
		t.Fatalf("期望 ErrUploadRejected, 实际: %v", err)
	}
}

func TestUploadImageMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("x")); !errors.Is(err, ErrUploadRejected) {
		t.Fatalf("期望 ErrUploadRejected, 实际: %v", err)
	}
}

func TestUploadImageNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立刻关闭，模拟图床不可达

	client := newTestClient(server.URL)
	if _, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("x")); err == nil {
		t.Fatal("图床不可达时应返回错误")
	}
}
