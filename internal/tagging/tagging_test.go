package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"dedupe and drop empty", "a, b ,b,,c", []string{"a", "b", "c"}},
		{"empty", "", []string{}},
		{"only separators", " , ,, ", []string{}},
		{"internal whitespace removed", "machine learning, go\tlang", []string{"machinelearning", "golang"}},
		{"case sensitive", "Go,go,GO", []string{"Go", "go", "GO"}},
		{"newlines", "x\n,\ny", []string{"x", "y"}},
		{"keeps first occurrence order", "c,b,a,b,c", []string{"c", "b", "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractTags(tc.in)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, "go, web", CleanTags("[go, web]"))
	assert.Equal(t, "ab", CleanTags("a]][b"))
	assert.Equal(t, "", CleanTags("[]"))
}

func TestFormatTags_RoundTrip(t *testing.T) {
	names := []string{"go", "web", "tips"}
	shown := FormatTags(names)
	assert.Equal(t, "[go, web, tips]", shown)
	assert.Equal(t, names, ExtractTags(CleanTags(shown)))
}
