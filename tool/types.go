package tool

import (
	"strings"

	"github.com/zero-day-ai/devflow/schema"
)

// ContentTypeText is the only content type devflow tools produce.
const ContentTypeText = "text"

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call.
type Result struct {
	Content []Content `json:"content"`

	// IsError marks a call that completed but carries a diagnostic rather
	// than the requested output.
	IsError bool `json:"isError,omitempty"`
}

// Text returns a Result holding a single text block.
func Text(text string) *Result {
	return &Result{Content: []Content{{Type: ContentTypeText, Text: text}}}
}

// ErrorText returns a Result holding a single text block flagged as an error.
func ErrorText(text string) *Result {
	r := Text(text)
	r.IsError = true
	return r
}

// String joins the text of all content blocks.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

// Descriptor describes a tool's metadata.
// It is what the server advertises when listing tools.
type Descriptor struct {
	// Name is the unique identifier for the tool.
	Name string `json:"name"`

	// Description is a human-readable description of what the tool does.
	Description string `json:"description"`

	// InputSchema describes the tool's required and optional arguments.
	InputSchema schema.JSON `json:"inputSchema"`
}

// ToDescriptor converts a Tool to its Descriptor.
func ToDescriptor(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.InputSchema(),
	}
}
