package repository

import (
	"strings"

	"gorm.io/gorm"
)

// postSearchDocumentExpr 检索文档表达式：标题与正文直接拼接
const postSearchDocumentExpr = "(coalesce(posts.title, '') || coalesce(posts.text, ''))"

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// supportsTrigram 判断方言是否支持 pg_trgm 运算符。
func supportsTrigram(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// trigramMatchCondition 构建 pg_trgm 相似匹配条件（% 运算符使用 pg_trgm.similarity_threshold）。
func trigramMatchCondition() string {
	return postSearchDocumentExpr + " % ?"
}

// trigramScoreOrder 构建按相似度降序的排序表达式。
func trigramScoreOrder() string {
	return "similarity(" + postSearchDocumentExpr + ", ?) DESC"
}

// searchDocument 与 postSearchDocumentExpr 对应的内存拼接。
func searchDocument(title, text string) string {
	return title + text
}
