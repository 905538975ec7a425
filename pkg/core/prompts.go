package core

import (
	"fmt"
	"strings"
)

// reflectionPrompt frames a set of memories for the LLM to distill.
// The response is stored verbatim as a learned-knowledge memory, so
// the prompt asks for prose only.
const reflectionPrompt = `You are the inner voice of a character in an interactive story.
Below are the character's memories most relevant to "%s".

%s

In one or two sentences, state the most important insight the character
would draw from these memories. Respond with the insight only, in the
first person, with no preamble.`

// buildReflectionPrompt renders the reflection prompt for a topic and
// its supporting memories.
func buildReflectionPrompt(topic string, memories []*Memory) string {
	var lines []string
	for i, memory := range memories {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, memory.MemoryType, memory.Content))
	}
	return fmt.Sprintf(reflectionPrompt, topic, strings.Join(lines, "\n"))
}
