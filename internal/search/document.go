// Package search 维护文章的全文索引。索引是关系库之外的派生数据，
// 允许短暂落后于文章表。
package search

import (
	"github.com/d60-Lab/gin-blog/internal/model"
)

// PostDocument 文章在索引中的投影
type PostDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Slug      string   `json:"slug"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp int64    `json:"timestamp"` // unix millis
}

// ToMap 字段名与 mapping 保持一致（小写）
func (d *PostDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":        d.ID,
		"title":     d.Title,
		"body":      d.Body,
		"slug":      d.Slug,
		"timestamp": d.Timestamp,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// PostToDocument 由文章及其已加载的标签生成索引文档
func PostToDocument(p *model.Post) *PostDocument {
	doc := &PostDocument{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Slug:      p.Slug,
		Timestamp: p.Timestamp.UnixMilli(),
	}
	for _, t := range p.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	return doc
}
