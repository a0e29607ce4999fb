package meme

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// postCreateMeme 以指定用户的身份调用CreateMeme控制器
func postCreateMeme(t *testing.T, username, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/memes", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(user.UsernameKey, username)
	CreateMeme(c)
	return w
}

func TestCreateMemeCannotOverwriteOthers(t *testing.T) {
	repo, _ := newTestRepository(t)
	globalRepository = repo
	t.Cleanup(func() { globalRepository = nil })

	original := sampleMeme("m1", "alice的原作", "alice", 7, time.Now())
	original.Comments = []Comment{{User: "carol", Text: "沙发"}}
	if err := repo.CreateMeme(original); err != nil {
		t.Fatalf("CreateMeme失败: %v", err)
	}

	w := postCreateMeme(t, "bob", `{"id":"m1","title":"换皮","imageUrl":"https://img.example/hijack.jpg"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("覆盖他人的表情包应返回409, 实际: %d (%s)", w.Code, w.Body.String())
	}

	// 原记录必须原封不动：署名、点赞和评论都还在
	got, err := repo.GetMeme("m1")
	if err != nil {
		t.Fatalf("GetMeme失败: %v", err)
	}
	if got.User != "alice" || got.Title != "alice的原作" || got.Likes != 7 || len(got.Comments) != 1 {
		t.Fatalf("原记录不应被改动: %+v", got)
	}
}

func TestCreateMemeOwnerCanReplaceOwn(t *testing.T) {
	repo, _ := newTestRepository(t)
	globalRepository = repo
	t.Cleanup(func() { globalRepository = nil })

	if err := repo.CreateMeme(sampleMeme("m1", "第一版", "alice", 3, time.Now())); err != nil {
		t.Fatalf("CreateMeme失败: %v", err)
	}

	w := postCreateMeme(t, "alice", `{"id":"m1","title":"第二版","imageUrl":"https://img.example/v2.jpg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("上传者本人替换自己的表情包应成功, 实际: %d (%s)", w.Code, w.Body.String())
	}

	got, err := repo.GetMeme("m1")
	if err != nil {
		t.Fatalf("GetMeme失败: %v", err)
	}
	if got.User != "alice" || got.Title != "第二版" {
		t.Fatalf("替换未生效: %+v", got)
	}
}

func TestCreateMemeWithFreshClientID(t *testing.T) {
	repo, _ := newTestRepository(t)
	globalRepository = repo
	t.Cleanup(func() { globalRepository = nil })

	w := postCreateMeme(t, "bob", `{"id":"fresh","title":"新作","imageUrl":"https://img.example/new.jpg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("未被占用的ID应可直接创建, 实际: %d (%s)", w.Code, w.Body.String())
	}

	got, err := repo.GetMeme("fresh")
	if err != nil {
		t.Fatalf("GetMeme失败: %v", err)
	}
	if got.User != "bob" || got.Likes != 0 {
		t.Fatalf("新建记录不正确: %+v", got)
	}
}
