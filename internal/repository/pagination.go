package repository

import (
	"github.com/levpat/marketplace-blog/internal/constants"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	return query.Limit(pageSize).Offset(pageOffset(page, pageSize))
}

// pageOffset 计算偏移量，页码小于 1 时按第一页处理，超过 MaxPage 时按 MaxPage 处理。
func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		return 0
	}
	return offset
}

// pageWindow 返回内存分页的切片区间 [start, end)。
func pageWindow(total, page, pageSize int) (int, int) {
	if pageSize <= 0 {
		return 0, total
	}
	start := pageOffset(page, pageSize)
	if start > total {
		return total, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
