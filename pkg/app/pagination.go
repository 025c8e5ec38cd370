package app

import (
	"github.com/haierkeys/fast-note-share-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// PaginationConfig pagination configuration // 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaginationConfig default pagination configuration // 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultPageSize: 10,
	MaxPageSize:     100,
}

// SetPaginationConfig overrides the defaults from configuration at startup.
// SetPaginationConfig 启动时用配置覆盖默认分页参数
func SetPaginationConfig(defaultSize, maxSize int) {
	if defaultSize > 0 {
		DefaultPaginationConfig.DefaultPageSize = defaultSize
	}
	if maxSize > 0 {
		DefaultPaginationConfig.MaxPageSize = maxSize
	}
}

func GetPage(c *gin.Context) int {
	var page int
	if s, exist := c.GetQuery("page"); exist {
		page = convert.StrTo(s).MustInt()
	}
	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSize gets page size clamped to the configured bounds
// GetPageSize 获取分页大小（限制在配置范围内）
func GetPageSize(c *gin.Context) int {
	cfg := DefaultPaginationConfig
	var pageSize int
	if s, exist := c.GetQuery("pageSize"); exist {
		pageSize = convert.StrTo(s).MustInt()
	}
	if pageSize <= 0 {
		return cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return pageSize
}

func GetPageOffset(page, pageSize int) int {
	if page > 0 {
		return (page - 1) * pageSize
	}
	return 0
}

// NewPager builds the pager block for list responses
// NewPager 构建列表响应的分页信息
func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}
