package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/meme"
	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/MemeVerse/memeverse-backend/internal/platform/metadata"
	"github.com/MemeVerse/memeverse-backend/pkg/lifecycle"
)

// 模块单例，由ConfigureModule构造
var (
	globalClient *Client
	syncInterval = 6 * time.Hour
)

// ConfigureModule 应用模板服务相关的配置
func ConfigureModule(cfg config.TemplateConfig) {
	globalClient = NewClient(cfg.BaseURL, cfg.Timeout)
	if cfg.SyncInterval > 0 {
		syncInterval = cfg.SyncInterval
	}
}

// SeedIfEmpty 在表情包集合为空时，用模板服务的数据填充初始信息流。
// 模板服务不可用不应阻塞应用启动，调用方只记录警告。
func SeedIfEmpty() error {
	memes, err := meme.Repo().GetAllMemes()
	if err != nil {
		return err
	}
	if len(memes) > 0 {
		return nil // 已有数据，无需播种
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	templates, err := globalClient.FetchTemplates(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	inserted := 0
	for _, t := range templates {
		m := ToMeme(t, now)
		if err := meme.Repo().CreateMeme(&m); err != nil {
			fmt.Printf("警告: 无法导入模板 %s: %v\n", t.ID, err)
			continue
		}
		inserted++
	}

	if err := metadata.SetSeedCompletedAt(database.DB, now); err != nil {
		fmt.Printf("警告: 无法记录种子数据导入时间: %v\n", err)
	}
	// 播种本身就是一次完整同步，同样计入同步时间
	if err := metadata.SetLastTemplateSync(database.DB, now); err != nil {
		fmt.Printf("警告: 无法记录模板同步时间: %v\n", err)
	}
	fmt.Printf("成功从模板服务导入 %d 个表情包作为初始信息流。\n", inserted)
	return nil
}

// StartTemplateSync 启动一个后台Goroutine，定期拉取模板服务并导入新出现的模板。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartTemplateSync(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("模板同步工作器已启动。")

	// 服务停机期间可能错过了同步窗口：
	// 上次成功同步距今已超过一个周期的话，先立即补一轮，再进入正常节奏
	last, err := metadata.GetLastTemplateSync(database.DB)
	if err != nil {
		fmt.Printf("警告: 无法读取上次模板同步时间: %v\n", err)
	} else if time.Since(last) >= syncInterval {
		if err := syncOnce(handle.Ctx()); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				fmt.Printf("模板同步工作器错误: %v\n", err)
			}
		}
	}

	for {
		// 使用可中断的休眠，收到停机信号时立刻退出
		if err := handle.Sleep(syncInterval); err != nil {
			fmt.Printf("模板同步工作器: 休眠被中断，正在关闭...\n")
			return
		}

		if err := syncOnce(handle.Ctx()); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				fmt.Printf("模板同步工作器错误: %v\n", err)
			}
		}
	}
}

// syncOnce 执行一次增量同步：只导入库中尚不存在的模板
func syncOnce(ctx context.Context) error {
	templates, err := globalClient.FetchTemplates(ctx)
	if err != nil {
		return err
	}

	existing, err := meme.Repo().GetAllMemes()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.ID] = true
	}

	now := time.Now()
	inserted := 0
	for _, t := range templates {
		if known[t.ID] {
			continue
		}
		m := ToMeme(t, now)
		if err := meme.Repo().CreateMeme(&m); err != nil {
			fmt.Printf("警告: 无法导入模板 %s: %v\n", t.ID, err)
			continue
		}
		inserted++
	}

	if err := metadata.SetLastTemplateSync(database.DB, now); err != nil {
		fmt.Printf("警告: 无法记录模板同步时间: %v\n", err)
	}
	if inserted > 0 {
		fmt.Printf("模板同步工作器: 本轮导入了 %d 个新模板。\n", inserted)
	}
	return nil
}
