package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Field is one frontmatter key. Fields render in slice order, so reports
// open with their identifying keys rather than in alphabetical order.
type Field struct {
	Key   string
	Value any
}

// SplitFrontmatter separates a leading yaml block from the body. Content
// without a block yields empty metadata and the content unchanged. CRLF line
// endings are accepted.
func SplitFrontmatter(content string) (map[string]any, string, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, fence+"\n") {
		return map[string]any{}, content, nil
	}
	rest := normalized[len(fence)+1:]
	raw, body, ok := strings.Cut(rest, "\n"+fence+"\n")
	if !ok {
		if !strings.HasSuffix(rest, "\n"+fence) {
			return nil, "", fmt.Errorf("invalid frontmatter: missing closing fence")
		}
		raw, body = strings.TrimSuffix(rest, "\n"+fence), ""
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return meta, body, nil
}

// RenderFrontmatter writes fields as a yaml block followed by body. Fields
// with a nil value are skipped.
func RenderFrontmatter(fields []Field, body string) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		var value yaml.Node
		if err := value.Encode(f.Value); err != nil {
			return "", fmt.Errorf("encode frontmatter %q: %w", f.Key, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}, &value)
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fence + "\n")
	if len(doc.Content) > 0 {
		sb.Write(raw)
	}
	sb.WriteString(fence + "\n")
	if !strings.HasPrefix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(body)
	return sb.String(), nil
}
