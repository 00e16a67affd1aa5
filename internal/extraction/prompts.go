package extraction

import (
	"fmt"
	"strings"
)

const coreTemplate = `<instructions>Read the news article below and extract the following details about the project it describes.
Return a JSON object with exactly these keys:
- "scale": one of "pilot", "demonstration", "full scale"
- "project_name": the name of the project
- "timeline": when the project starts, runs or is expected to be completed
- "technology": one of the following technologies: %s
If a detail is not mentioned in the article, use an empty string for it. Do not guess.</instructions>

Article:
"""%s"""`

const additionalTemplate = `<instructions>Read the news article below and extract the following details about the project it describes.
Return a JSON object with exactly these keys:
- "company": the company leading the project
- "projects mentioned": "multiple" if several projects are described, "one main one" otherwise
- "partners": the partner companies or institutions
- "continent": the continent where the project is located
- "country": the country where the project is located
- "project_status": one of the following statuses: %s
- "irrelevant": false
If the article is unrelated to the industry's decarbonisation projects, or describes a finished product rather than a project, set "irrelevant" to true and leave every other key as an empty string.
If a detail is not mentioned in the article, use an empty string for it. Do not guess.</instructions>

Article:
"""%s"""`

func buildCorePrompt(text string, technologies []string) string {
	return fmt.Sprintf(coreTemplate, quoteList(technologies), text)
}

func buildAdditionalPrompt(text string, statuses []string) string {
	return fmt.Sprintf(additionalTemplate, quoteList(statuses), text)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
