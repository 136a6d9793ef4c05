package chat

import (
	"fmt"
	"strings"

	"draftpad-backend/internal/service/contextsvc"
	"draftpad-backend/internal/service/editparse"
	"draftpad-backend/internal/service/llm"
)

// buildPrompt renders the assembled context into the system/user prompt
// pair. The system prompt carries the structured-output contract the edit
// parser decodes on the way back.
func buildPrompt(req Request, assembled contextsvc.Assembled) llm.Prompt {
	var sb strings.Builder

	sb.WriteString("You are Draftpad, an assistant that answers questions and edits the user's structured documents (profiles, posts, albums).\n\n")

	if req.Mode == ModeAsk {
		sb.WriteString("The user is asking a question. Answer it directly; only propose document edits when the instruction explicitly asks for them.\n\n")
	} else {
		sb.WriteString("The user may ask you to create or edit documents. Propose the full new content of every document you change.\n\n")
	}

	sb.WriteString("Output format: write your reply in plain language first. If you propose document edits, follow the reply with a line containing exactly\n")
	sb.WriteString(editparse.Delimiter)
	sb.WriteString("\nand then a single JSON object of the form\n")
	sb.WriteString(`{"reply": "<your reply>", "documents": [{"id": "<existing id or empty>", "title": "<title>", "kind": "<profile|post|album|generic>", "content": "<full document content>"}]}`)
	sb.WriteString("\nUse the document's id when you are editing one of the documents below. Omit the JSON segment entirely when no documents change.\n")

	if len(assembled.Documents) > 0 {
		sb.WriteString("\nDocuments available to you:\n")
		for _, doc := range assembled.Documents {
			fmt.Fprintf(&sb, "\n--- document id=%s kind=%s title=%q ---\n%s\n", doc.ID, doc.Kind, doc.Title, doc.Content)
		}
	}

	if len(assembled.SearchResults) > 0 {
		sb.WriteString("\nWeb search results:\n")
		for _, result := range assembled.SearchResults {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", result.Title, result.URL, result.Snippet)
		}
	}

	return llm.Prompt{
		System:  sb.String(),
		User:    req.Message,
		History: req.History,
	}
}
