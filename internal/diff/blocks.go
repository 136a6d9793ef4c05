package diff

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// SplitBlocks segments document content into structural blocks, one per
// paragraph, heading, list or code fence. Content is parsed as markdown so a
// fenced code block with internal blank lines stays a single block; anything
// the parser yields no source span for falls back to blank-line splitting.
func SplitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	src := []byte(content)
	parser := goldmark.New().Parser()
	doc := parser.Parse(text.NewReader(src))

	var blocks []string
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		lines := child.Lines()
		if lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		stop := lines.At(lines.Len() - 1).Stop
		if start < 0 || stop > len(src) || start >= stop {
			continue
		}
		block := strings.TrimRight(string(src[start:stop]), "\n")
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 0 {
		return splitOnBlankLines(trimmed)
	}
	return blocks
}

func splitOnBlankLines(content string) []string {
	var blocks []string
	for _, part := range strings.Split(content, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// Content computes the edit script between two content strings at block
// granularity.
func Content(before, after string) []Op {
	return Blocks(SplitBlocks(before), SplitBlocks(after))
}
