// Package editparse extracts a reply string and proposed document edits
// from raw model output. Parsing never fails the pipeline: a malformed
// structured segment degrades to "reply only, no edits".
package editparse

import (
	"encoding/json"
	"strings"

	"draftpad-backend/internal/domain"
)

// Delimiter separates the plain-language reply from the structured JSON
// segment in model output. The prompt instructs the model to emit it; the
// automation extractor appends its trailer with the same delimiter.
const Delimiter = "---DRAFTPAD-JSON---"

// Result is the parsed model output.
type Result struct {
	Reply     string
	Proposals []domain.EditProposal
}

// payload mirrors the structured segment the model is asked to produce.
// Optional fields are modeled explicitly; invalid shapes fail closed to
// "no edits".
type payload struct {
	Reply     string            `json:"reply"`
	Documents []documentPayload `json:"documents"`
}

type documentPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Parse extracts the reply and edit proposals from raw model text.
// Resolution order: text after the delimiter, then the first-{ to last-}
// span of the entire text, then the whole text as reply with zero edits.
func Parse(raw string) Result {
	if idx := strings.Index(raw, Delimiter); idx >= 0 {
		head := strings.TrimSpace(raw[:idx])
		tail := raw[idx+len(Delimiter):]
		if result, ok := parseJSON(tail); ok {
			if result.Reply == "" {
				result.Reply = head
			}
			return result
		}
		// Delimiter present but the segment is unusable: keep the
		// human-readable part.
		if head != "" {
			return Result{Reply: head}
		}
		return Result{Reply: strings.TrimSpace(raw)}
	}

	if result, ok := parseJSON(raw); ok {
		return result
	}

	return Result{Reply: strings.TrimSpace(raw)}
}

func parseJSON(text string) (Result, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Result{}, false
	}

	var p payload
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return Result{}, false
	}
	if p.Reply == "" && len(p.Documents) == 0 {
		return Result{}, false
	}

	result := Result{Reply: p.Reply}
	for _, doc := range p.Documents {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		result.Proposals = append(result.Proposals, domain.EditProposal{
			TargetID:    strings.TrimSpace(doc.ID),
			TargetTitle: strings.TrimSpace(doc.Title),
			Kind:        strings.TrimSpace(doc.Kind),
			Content:     doc.Content,
		})
	}
	return result, true
}
