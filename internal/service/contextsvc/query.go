package contextsvc

import (
	"regexp"
	"strings"

	"draftpad-backend/internal/domain"
)

var (
	urlPattern    = regexp.MustCompile(`https?://[^\s"'<>]+`)
	quotedPattern = regexp.MustCompile(`"([^"]{2,120})"|“([^”]{2,120})”|《([^》]{1,80})》`)
)

// DeriveSearchQuery picks the web-search query for an instruction.
// Priority: first URL in the instruction, then a quoted or titled phrase,
// then the most recent URL anywhere in history, then the first attached
// document's title, then the raw instruction.
func DeriveSearchQuery(instruction string, history []domain.ChatTurn, attached []domain.Document) string {
	if url := urlPattern.FindString(instruction); url != "" {
		return url
	}

	if match := quotedPattern.FindStringSubmatch(instruction); match != nil {
		for _, group := range match[1:] {
			if group != "" {
				return group
			}
		}
	}

	for i := len(history) - 1; i >= 0; i-- {
		urls := urlPattern.FindAllString(history[i].Text, -1)
		if len(urls) > 0 {
			return urls[len(urls)-1]
		}
	}

	if len(attached) > 0 && strings.TrimSpace(attached[0].Title) != "" {
		return attached[0].Title
	}

	return strings.TrimSpace(instruction)
}
