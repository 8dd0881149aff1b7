package analysis

import "strings"

const promptTemplate = `Analyze this web award winner description and extract the following information:
1. Technologies used (list)
2. Innovative features (list)
3. Technical details (summary)
4. Design highlights (summary)
5. Brief analysis of what makes this project award-worthy

Description: {{description}}

Format your response as JSON with these keys: technologies, innovative_features, technical_details, design_highlights, ai_analysis`

// Prompt renders the analysis request for one description.
func Prompt(description string) string {
	return strings.Replace(promptTemplate, "{{description}}", description, 1)
}
