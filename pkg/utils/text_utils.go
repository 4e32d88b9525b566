package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

// LikeEscape LIKE 模式使用的转义字符，各数据库的字符串字面量都不需要再转义它
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// FoldKeyword 规范化搜索关键词，用于不区分大小写的匹配。
// 入库的搜索列与查询关键词都经过同一折叠，ß 与 ss 等价。
func FoldKeyword(s string) string {
	// Caser 有状态，不能在协程间共享
	return cases.Fold().String(strings.TrimSpace(s))
}

// ContainsPattern 生成包含匹配的 LIKE 模式，关键词中的 % 和 _ 按字面匹配。
// 配合 "LIKE ? ESCAPE '!'" 使用。
func ContainsPattern(keyword string) string {
	return "%" + likeReplacer.Replace(keyword) + "%"
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
