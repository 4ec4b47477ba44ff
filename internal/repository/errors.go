package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode = "23505"
	expressionIndexSuffix = "_md5"
)

// UniqueViolationField 判断是否为唯一约束冲突，并返回冲突字段名（无法识别时为空）
func UniqueViolationField(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return "", false
		}
		if pgErr.ColumnName != "" {
			return pgErr.ColumnName, true
		}
		return fieldFromConstraint(pgErr.TableName, pgErr.ConstraintName), true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	// sqlite: UNIQUE constraint failed: posts.title (2067)
	message := err.Error()
	const marker = "UNIQUE constraint failed: "
	idx := strings.Index(message, marker)
	if idx < 0 {
		return "", false
	}
	rest := message[idx+len(marker):]
	if end := strings.IndexAny(rest, " ,)"); end >= 0 {
		rest = rest[:end]
	}
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		rest = rest[dot+1:]
	}
	return strings.TrimSpace(rest), true
}

func fieldFromConstraint(table, constraint string) string {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return ""
	}
	field := constraint
	for _, prefix := range []string{"idx_", "uni_"} {
		full := prefix + table + "_"
		if table != "" && strings.HasPrefix(constraint, full) {
			field = strings.TrimPrefix(constraint, full)
			break
		}
	}
	// 表达式索引：idx_posts_text_md5 -> text
	return strings.TrimSuffix(field, expressionIndexSuffix)
}
