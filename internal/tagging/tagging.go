// Package tagging 解析表单中的标签串
package tagging

import (
	"strings"
	"unicode"
)

// ExtractTags 删除输入中所有空白字符（包括词内空白），按逗号切分，
// 按出现顺序保留每个非空标签的首次出现。空或畸形输入返回空切片。
func ExtractTags(raw string) []string {
	noWhite := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, tag := range strings.Split(noWhite, ",") {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// CleanTags 去掉展示串里的 [ 和 ]
func CleanTags(s string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(s)
}

// FormatTags 生成标签列表的展示形式，如 "[go, web]"
func FormatTags(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
