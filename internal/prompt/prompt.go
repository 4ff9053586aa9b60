// Package prompt renders retrieved chunks and a visitor question into the
// system/user message pair sent to the chat model.
package prompt

import (
	"fmt"
	"strings"

	"portfolio/backend/internal/knowledge"
)

// Prompt is exactly two messages. Conversation history is deliberately not
// included; each turn is stateless with respect to prior turns.
type Prompt struct {
	System string
	User   string
}

const systemTemplate = `You are an AI assistant for %[1]s's portfolio.
You help visitors learn about %[1]s's projects, skills, and experience.
Be friendly, professional, and informative. Use the provided context to answer questions.
For questions about education or work history, cite the resume content in the context.
If the answer is not in the context, be honest about it.

Context:
%[2]s`

// Assemble merges chunk contents into a labelled context block and renders the
// templates. The question is passed through verbatim.
func Assemble(chunks []knowledge.Document, question, ownerName string) Prompt {
	return Prompt{
		System: fmt.Sprintf(systemTemplate, ownerName, ContextBlock(chunks)),
		User:   question,
	}
}

// ContextBlock labels each chunk with its position and source type so the
// model can distinguish repo metadata from resume text.
func ContextBlock(chunks []knowledge.Document) string {
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		srcType := c.Metadata.Type
		if srcType == "" {
			srcType = knowledge.TypeUnknown
		}
		parts = append(parts, fmt.Sprintf("[Source %d - %s]: %s", i+1, srcType, c.Content))
	}
	return strings.Join(parts, "\n\n")
}
