package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownRender(t *testing.T) {
	md := NewMarkdown()

	out := string(md.Render("## Results\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>\n"))
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "<script>")

	link := string(md.Render("[x](javascript:alert(1))"))
	assert.False(t, strings.Contains(link, "javascript:"), link)
}
