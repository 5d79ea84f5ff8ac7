package llm

import "strings"

const contradictionPrompt = `You compare facts stored about the same user.
Statement A: %s
Statement B: %s

Can both statements be true of the same person at the same time? If they cannot, they contradict each other.
Answer only "true" if they contradict or "false" if they are compatible. No explanation.`

const verdictSystemPrompt = `You check stored user facts for conflicts. Reply with a single word: true or false.`

// parseVerdict reads a true/false answer. Anything that is not clearly
// "true" counts as no contradiction.
func parseVerdict(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.Trim(a, "\"'`.!")
	return a == "true" || a == "yes" || strings.HasPrefix(a, "true ")
}
