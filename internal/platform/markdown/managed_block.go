package markdown

import "strings"

// Block delimits generated content inside a note that people may edit.
type Block struct {
	Start string
	End   string
}

// Replace swaps the generated region of body for content, appending the
// block when body has none. Text outside the markers is preserved.
func (b Block) Replace(body, content string) string {
	start := strings.Index(body, b.Start)
	end := strings.Index(body, b.End)
	block := b.Start + "\n" + content + "\n" + b.End

	if start >= 0 && end > start {
		return body[:start] + block + body[end+len(b.End):]
	}
	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	sep := "\n\n"
	if strings.HasSuffix(body, "\n") {
		sep = "\n"
	}
	return body + sep + block + "\n"
}
