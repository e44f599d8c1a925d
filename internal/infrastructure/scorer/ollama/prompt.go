package ollama

func buildScoringPrompt(text string, maxChars int) string {
	snippet := text
	if len(snippet) > maxChars {
		snippet = snippet[:maxChars]
	}

	return `You are a document fraud analyst.
Rate how likely the following document text comes from a tampered, altered or fabricated document.
Return strict JSON object with keys:
score (number from 0 to 100, where 0 means clearly authentic and 100 means clearly tampered), reason (short string).
No markdown, no extra keys.

Document text:
` + snippet
}
