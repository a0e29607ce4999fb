package cache

import (
	"fmt"
	"time"

	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/MemeVerse/memeverse-backend/internal/platform/startup"
	"github.com/MemeVerse/memeverse-backend/pkg/lifecycle"
)

// reconcileInterval 是定时对账的频率。
// 点赞缓存的更新是尽力而为的，偶发的写入失败靠对账修复。
const reconcileInterval = 10 * time.Minute

// StartReconcileScheduler 启动一个后台Goroutine，定期用SQLite中的权威数据
// 重建Redis里的点赞排行和用户点赞集合，修复可能的漂移。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartReconcileScheduler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("缓存对账调度器已启动。")

	for {
		// 使用可中断的休眠来代替ticker，
		// 使整个循环可以在收到停机信号时立刻从休眠中唤醒并退出。
		if err := handle.Sleep(reconcileInterval); err != nil {
			fmt.Printf("缓存对账调度器: 休眠被中断，正在关闭...\n")
			return
		}

		if !database.IsRedisHealthy() {
			fmt.Println("缓存对账调度器: 检测到Redis不可用，跳过本次对账。")
			continue
		}

		fmt.Println("缓存对账调度器: 正在执行定时对账...")
		if err := startup.RebuildCache(); err != nil {
			fmt.Printf("缓存对账调度器错误: 重建缓存失败: %v\n", err)
		} else {
			fmt.Println("缓存对账调度器: 对账完成。")
		}
	}
}
