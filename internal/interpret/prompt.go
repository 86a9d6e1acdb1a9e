package interpret

import "fmt"

const systemPrompt = "You are a science paper interpretation assistant who helps " +
	"high school students understand academic papers. Explain everything in " +
	"plain, accessible language."

const userPromptFormat = `Please interpret the following natural science paper content:

%s

Requirements:
1. Explain technical terms in plain language
2. Analyze the research methods and experimental design
3. Summarize the main findings and their significance
4. Relate the work to high school science concepts
5. End the interpretation with a glossary of key terms

Close with: "This interpretation was generated by an AI assistant and is for reference only."`

func buildUserPrompt(content string) string {
	return fmt.Sprintf(userPromptFormat, content)
}
