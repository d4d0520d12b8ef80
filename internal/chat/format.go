package chat

import (
	"fmt"
	"strings"
)

const questionMarker = "📋 **Question:**"

// ensureQuestionHeader prefixes the original question unless the model
// already opened with one (checked within roughly the first 100 characters).
func ensureQuestionHeader(text, question string) string {
	head := text
	if len(head) > 100 {
		head = head[:100]
	}
	if strings.Contains(head, "Question:") {
		return text
	}
	return fmt.Sprintf("%s %s\n\n%s", questionMarker, question, text)
}

func hasSourceLine(text string) bool {
	return strings.Contains(strings.ToLower(text), "source:")
}

func sourceFooter(source, date string) string {
	return fmt.Sprintf("\n\n---\n**Source:** %s\n**Date:** %s", source, date)
}
