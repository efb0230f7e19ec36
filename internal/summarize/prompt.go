package summarize

import (
	"fmt"
	"strings"
)

const promptTemplate = `Analyze this document and provide a summary and category assignment.

Filename: %s

Document content:
%s

Task:
1. Write a brief technical summary (1-2 sentences, max %d words) describing what this document contains and its purpose.
2. Choose the BEST category from this list: %s
   - Only propose a NEW category if none of the existing categories are appropriate.
   - New categories should be justified and follow the naming pattern of existing ones.

Respond ONLY with valid JSON in this exact format:
{
  "summary": "your concise technical summary here (max %d words)",
  "category": "chosen category name",
  "is_new_category": false
}

If proposing a new category, set is_new_category to true.`

// BuildPrompt assembles the summarization prompt for one file given the
// candidate category labels.
func BuildPrompt(fileName, content string, categories []string, maxWords int) string {
	labels := strings.Join(categories, ", ")
	if labels == "" {
		labels = "Guides, Models, Scripts, Workflows, QuickRefs"
	}
	return fmt.Sprintf(promptTemplate, fileName, content, maxWords, labels, maxWords)
}
