package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping title/body/slug 走英文分词与词干，tags 保持原样精确匹配
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	body := bleve.NewTextFieldMapping()
	body.Analyzer = en.AnalyzerName
	body.Store = false
	doc.AddFieldMappingsAt("body", body)

	slug := bleve.NewTextFieldMapping()
	slug.Analyzer = en.AnalyzerName
	slug.Store = false
	doc.AddFieldMappingsAt("slug", slug)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	tags.Store = true
	doc.AddFieldMappingsAt("tags", tags)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	ts := bleve.NewNumericFieldMapping()
	ts.Store = true
	doc.AddFieldMappingsAt("timestamp", ts)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
