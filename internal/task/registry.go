package task

import (
	"sync"

	"github.com/haierkeys/fast-note-share-service/internal/app"
)

// Factory 任务工厂函数，返回 nil 任务表示按配置禁用
type Factory func(appContainer *app.App) (Task, error)

var (
	taskRegistry  []Factory
	registryMutex sync.RWMutex
)

// Register 注册任务工厂函数
// 通常在各个任务文件的 init() 函数中调用
func Register(factory Factory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	taskRegistry = append(taskRegistry, factory)
}

// GetFactories 获取所有已注册的任务工厂
func GetFactories() []Factory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	// 返回副本,避免外部修改
	factories := make([]Factory, len(taskRegistry))
	copy(factories, taskRegistry)
	return factories
}
