package react

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/rickchristie/reagent"
)

//go:embed system.tmpl
var systemTemplateContent string

// SystemPromptData contains the data passed to the system prompt template.
type SystemPromptData struct {
	// Name is the agent name.
	Name string

	// Instructions are the behavior instructions set with WithInstructions.
	Instructions string

	// Tools lists the equipped tools, excluding the completion action.
	Tools []reagent.ToolDescriptor

	// CompletionAction is the name of the action that ends the loop.
	CompletionAction string

	// Time provides access to time-related functions in templates.
	// Use {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "2006-01-02"}}, etc.
	Time reagent.Clock
}

// DefaultSystemTemplate is the default system prompt. It explains the
// reason/act cycle and how to finish.
//
// Users can replace it via Agent.WithSystemTemplate().
var DefaultSystemTemplate = template.Must(
	template.New("react_system").Parse(systemTemplateContent),
)

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data SystemPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
