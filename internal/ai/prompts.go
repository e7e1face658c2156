package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_generation.md
var jobGenerationPromptRaw string

// JobGenerationTemplate is the parsed prompt template for synthetic postings.
var JobGenerationTemplate = template.Must(template.New("job_generation").Parse(jobGenerationPromptRaw))
