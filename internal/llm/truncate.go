package llm

// EstimateTokens is a fast character-based token estimate. Three characters
// per token tracks code-heavy text closely enough for budgeting prompts.
func EstimateTokens(text string) int {
	return len(text) / 3
}

// TruncateToTokens cuts text to approximately maxTokens, appending a marker
// so the model knows content was dropped.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	maxChars := maxTokens * 3
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "\n[... truncated ...]"
}
