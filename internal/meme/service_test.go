package meme

import (
	"testing"
	"time"
)

// seedFeed 填充一批覆盖不同用户、分类和互动量的表情包
func seedFeed(t *testing.T, repo *Repository) {
	t.Helper()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	memes := []*Meme{
		sampleMeme("m1", "Distracted Boyfriend", "alice", 5, base.Add(4*time.Hour)),
		sampleMeme("m2", "Grumpy Cat", "alice", 9, base.Add(3*time.Hour)),
		sampleMeme("m3", "Doge to the moon", "bob", 2, base.Add(2*time.Hour)),
		sampleMeme("m4", "Success Kid", "carol", 9, base.Add(time.Hour)),
		sampleMeme("m5", "Sad cat hours", "bob", 0, base),
	}
	memes[0].Category = "Classic"
	memes[1].Category = "Animals"
	memes[2].Category = "Animals"
	memes[3].Category = "Classic"
	memes[4].Category = "Animals"
	memes[2].Comments = []Comment{
		{User: "alice", Text: "wow"},
		{User: "carol", Text: "such meme"},
	}
	memes[4].Comments = []Comment{{User: "alice", Text: "mood"}}

	for _, m := range memes {
		if err := repo.CreateMeme(m); err != nil {
			t.Fatalf("CreateMeme(%s)失败: %v", m.ID, err)
		}
	}
}

func feedIDs(page *FeedPage) []string {
	ids := make([]string, 0, len(page.Memes))
	for _, m := range page.Memes {
		ids = append(ids, m.ID)
	}
	return ids
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("期望 %v, 实际: %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望 %v, 实际: %v", want, got)
		}
	}
}

func TestQueryFeedDefaultOrder(t *testing.T) {
	repo, _ := newTestRepository(t)
	seedFeed(t, repo)

	page, err := repo.QueryFeed(FeedQuery{})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	// 默认按创建时间降序
	assertIDs(t, feedIDs(page), "m1", "m2", "m3", "m4", "m5")
	if page.Total != 5 || page.HasMore {
		t.Fatalf("分页元数据不正确: %+v", page)
	}
}

func TestQueryFeedFilters(t *testing.T) {
	repo, _ := newTestRepository(t)
	seedFeed(t, repo)

	// 标题搜索不区分大小写
	page, err := repo.QueryFeed(FeedQuery{Search: "CAT"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	assertIDs(t, feedIDs(page), "m2", "m5")

	// 分类过滤，"All"等价于不过滤
	page, err = repo.QueryFeed(FeedQuery{Category: "Classic"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	assertIDs(t, feedIDs(page), "m1", "m4")

	page, err = repo.QueryFeed(FeedQuery{Category: "All"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("分类All不应过滤任何记录, 实际: %d", page.Total)
	}

	// 按上传者过滤
	page, err = repo.QueryFeed(FeedQuery{User: "bob"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	assertIDs(t, feedIDs(page), "m3", "m5")

	// 组合过滤
	page, err = repo.QueryFeed(FeedQuery{User: "bob", Category: "Animals", Search: "doge"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	assertIDs(t, feedIDs(page), "m3")
}

func TestQueryFeedSorting(t *testing.T) {
	repo, _ := newTestRepository(t)
	seedFeed(t, repo)

	// 按点赞排序，并列时保持时间降序（稳定排序）
	page, err := repo.QueryFeed(FeedQuery{SortBy: "likes"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	assertIDs(t, feedIDs(page), "m2", "m4", "m1", "m3", "m5")

	// 按评论数排序
	page, err = repo.QueryFeed(FeedQuery{SortBy: "comments"})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	ids := feedIDs(page)
	if ids[0] != "m3" || ids[1] != "m5" {
		t.Fatalf("评论最多的应排在前面, 实际: %v", ids)
	}
}

func TestQueryFeedPagination(t *testing.T) {
	repo, _ := newTestRepository(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		m := sampleMeme(string(rune('a'+i)), "page test", "alice", 0, base.Add(time.Duration(i)*time.Minute))
		if err := repo.CreateMeme(m); err != nil {
			t.Fatalf("CreateMeme失败: %v", err)
		}
	}

	// 默认每页6条
	page, err := repo.QueryFeed(FeedQuery{Page: 1})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	if len(page.Memes) != 6 || !page.HasMore || page.Total != 8 {
		t.Fatalf("第一页分页不正确: 条数=%d hasMore=%v total=%d", len(page.Memes), page.HasMore, page.Total)
	}

	page, err = repo.QueryFeed(FeedQuery{Page: 2})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	if len(page.Memes) != 2 || page.HasMore {
		t.Fatalf("第二页分页不正确: 条数=%d hasMore=%v", len(page.Memes), page.HasMore)
	}

	// 越界的页码返回空页而不是错误
	page, err = repo.QueryFeed(FeedQuery{Page: 99})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	if len(page.Memes) != 0 || page.HasMore {
		t.Fatalf("越界页应为空: %+v", page)
	}

	// 自定义每页条数
	page, err = repo.QueryFeed(FeedQuery{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("QueryFeed失败: %v", err)
	}
	if len(page.Memes) != 3 || !page.HasMore {
		t.Fatalf("自定义条数分页不正确: 条数=%d hasMore=%v", len(page.Memes), page.HasMore)
	}
}

func TestGetRankings(t *testing.T) {
	repo, _ := newTestRepository(t)
	seedFeed(t, repo)

	entries, err := repo.GetRankings()
	if err != nil {
		t.Fatalf("GetRankings失败: %v", err)
	}

	// alice和carol的最佳都是9赞，并列时按用户名排序；
	// m5没有获赞，不影响bob凭m3上榜
	if len(entries) != 3 {
		t.Fatalf("期望3位用户上榜, 实际: %d", len(entries))
	}
	wantUsers := []string{"alice", "carol", "bob"}
	wantMemes := []string{"m2", "m4", "m3"}
	for i := range wantUsers {
		e := entries[i]
		if e.Rank != i+1 || e.User != wantUsers[i] || e.Meme.ID != wantMemes[i] {
			t.Fatalf("第%d名不正确: %+v", i+1, e)
		}
	}
}

func TestGetRankingsSkipsUnlikedUsers(t *testing.T) {
	repo, _ := newTestRepository(t)

	if err := repo.CreateMeme(sampleMeme("m1", "零赞", "alice", 0, time.Now())); err != nil {
		t.Fatalf("CreateMeme失败: %v", err)
	}

	entries, err := repo.GetRankings()
	if err != nil {
		t.Fatalf("GetRankings失败: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("没有获赞的用户不应上榜, 实际: %+v", entries)
	}
}

func TestGetTopMemesFallsBackToSQLite(t *testing.T) {
	// rdb为nil时直接走SQLite全量排序路径
	repo, _ := newTestRepository(t)
	seedFeed(t, repo)

	memes, err := repo.GetTopMemes(3)
	if err != nil {
		t.Fatalf("GetTopMemes失败: %v", err)
	}
	if len(memes) != 3 {
		t.Fatalf("期望3条, 实际: %d", len(memes))
	}
	if memes[0].Likes < memes[1].Likes || memes[1].Likes < memes[2].Likes {
		t.Fatalf("应按点赞降序: %+v", memes)
	}
	if memes[0].ID != "m2" && memes[0].ID != "m4" {
		t.Fatalf("榜首应是9赞的表情包, 实际: %+v", memes[0])
	}
}
