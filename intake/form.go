package intake

import (
	"fmt"
	"strings"

	"github.com/eino-contrib/jsonschema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/talentscout/types"
)

const (
	// Greeting opens every session.
	Greeting = "Hello! Let’s begin the screening. What is your full name?"

	// SystemPrompt is the first transcript entry of every session.
	SystemPrompt = `You are TalentScout, an AI hiring assistant for a recruitment agency.

Rules:
- Collect candidate information step by step.
- Ask only one question at a time.
- Be professional and friendly.
- After collecting tech stack, generate technical interview questions.
- If the user types exit, quit, or stop, end the conversation politely.
- Use candidate information strictly for initial hiring screening.`

	// PrivacyNotice is shown by transports before the greeting.
	PrivacyNotice = "Privacy Notice: This assistant collects limited personal information " +
		"solely for initial hiring screening. No data is stored after the session ends. " +
		"You may type exit at any time to stop and withdraw."
)

var steps = map[types.Stage]types.Step{
	types.StageName: {
		Stage: types.StageName,
		Field: types.FieldInfo{JSONPointer: "/name", DisplayName: "Full name", Required: true},
		Ask:   "Thanks! What is your email address?",
	},
	types.StageEmail: {
		Stage:    types.StageEmail,
		Field:    types.FieldInfo{JSONPointer: "/email", DisplayName: "Email", Description: "must contain @ and .", Required: true},
		Validate: IsValidEmail,
		Retry:    "That doesn’t look like a valid email. Could you please re-enter your email address?",
		Ask:      "What is your phone number?",
	},
	types.StagePhone: {
		Stage:    types.StagePhone,
		Field:    types.FieldInfo{JSONPointer: "/phone", DisplayName: "Phone", Description: "digits only, at least 8", Required: true},
		Validate: IsValidPhone,
		Retry:    "Please enter a valid phone number (digits only).",
		Ask:      "How many years of experience do you have?",
	},
	types.StageExperience: {
		Stage: types.StageExperience,
		Field: types.FieldInfo{JSONPointer: "/experience", DisplayName: "Experience (years)", Required: true},
		Ask:   "Which position(s) are you applying for?",
	},
	types.StagePosition: {
		Stage: types.StagePosition,
		Field: types.FieldInfo{JSONPointer: "/position", DisplayName: "Desired position", Required: true},
		Ask:   "Where are you currently located?",
	},
	types.StageLocation: {
		Stage: types.StageLocation,
		Field: types.FieldInfo{JSONPointer: "/location", DisplayName: "Location", Required: true},
		Ask:   "Please list your tech stack (languages, frameworks, tools).",
	},
	types.StageTechStack: {
		Stage: types.StageTechStack,
		Field: types.FieldInfo{JSONPointer: "/tech_stack", DisplayName: "Tech stack", Required: true},
	},
}

// CandidateForm is the screening questionnaire.
type CandidateForm struct{}

func (CandidateForm) SystemPrompt() string { return SystemPrompt }

func (CandidateForm) Greeting() string { return Greeting }

func (CandidateForm) Step(stage types.Stage) (types.Step, bool) {
	step, ok := steps[stage]
	return step, ok
}

func (CandidateForm) MissingFacts(current types.Record) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, stage := range types.Stages {
		if !current.Has(stage) {
			missing = append(missing, steps[stage].Field)
		}
	}
	return missing
}

// AllowedPaths lists the JSON pointers of the record schema's properties.
func (CandidateForm) AllowedPaths() []string {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	schema := r.Reflect(&types.Record{})
	if schema.Properties == nil {
		return nil
	}
	paths := make([]string, 0, schema.Properties.Len())
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		paths = append(paths, "/"+pair.Key)
	}
	return paths
}

// Summary renders the record as a markdown table for recruiters.
func (CandidateForm) Summary(current types.Record) string {
	var buf strings.Builder
	buf.WriteString("# Candidate profile:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, stage := range types.Stages {
		value := current.Get(stage)
		if value == "" {
			value = "-"
		}
		_ = table.Append(steps[stage].Field.DisplayName, value)
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("# Candidate profile:\n(render failed: %v)", err)
	}
	return buf.String()
}
