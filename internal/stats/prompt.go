package stats

import (
	"fmt"

	"llamachat/internal/ai"
)

const systemPrompt = `You are a helpful statistics assistant. When users ask for statistics, provide clear, well-formatted responses.

CRITICAL: Always respond in the SAME LANGUAGE as the user's question. If the question is in Spanish, respond in Spanish. If it's in French, respond in French. If it's in English, respond in English. Detect the language from the user's query and match it exactly.

FORMATTING REQUIREMENTS:
- Use clear headings and sections
- Use bullet points or numbered lists for multiple statistics
- Use line breaks between sections for readability
- Bold important numbers or key statistics
- Organize information in a logical flow
- Use proper spacing and structure

RESPONSE STRUCTURE:
1. Start with a brief introduction/overview
2. Present the main statistics clearly (use lists if multiple)
3. Include relevant dates or time periods
4. Mention the source of the data
5. Provide a brief explanation or context

Make the response easy to scan and read. Use clear formatting with proper spacing.`

const userPromptFmt = `Please provide statistics for the following query: %s

IMPORTANT:
- Respond in the EXACT SAME LANGUAGE as the query above
- Format your response with clear sections, bullet points, and proper spacing
- Make it easy to read and scan
- Use headings, lists, and line breaks for better readability

Structure your response as follows:
1. Brief overview
2. Main statistics (use bullet points if multiple)
3. Date/relevance period
4. Source information
5. Brief explanation/context

Format with proper spacing and structure for maximum readability.`

const historyNote = `

Note: Take the previous conversation context into account when answering.`

// buildMessages assembles the full prompt: the system instruction, any prior
// conversation (system turns excluded), then the new user turn.
func buildMessages(query string, history []ai.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})

	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		messages = append(messages, m)
	}

	userPrompt := fmt.Sprintf(userPromptFmt, query)
	if len(history) > 0 {
		userPrompt += historyNote
	}
	messages = append(messages, ai.Message{Role: "user", Content: userPrompt})

	return messages
}
