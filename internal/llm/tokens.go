package llm

// EstimateTokens approximates the token count of text at four bytes per
// token, rounded up. It is used for logging prompt size only.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
