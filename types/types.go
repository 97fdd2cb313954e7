package types

type Stage string

const (
	StageName       Stage = "name"
	StageEmail      Stage = "email"
	StagePhone      Stage = "phone"
	StageExperience Stage = "experience"
	StagePosition   Stage = "position"
	StageLocation   Stage = "location"
	StageTechStack  Stage = "tech_stack"
	StageEnd        Stage = "end"
)

// Stages lists the collection stages in the order they are asked.
var Stages = []Stage{
	StageName,
	StageEmail,
	StagePhone,
	StageExperience,
	StagePosition,
	StageLocation,
	StageTechStack,
}

// Next returns the stage that follows s. StageEnd is terminal.
func (s Stage) Next() Stage {
	for i, stage := range Stages {
		if stage != s {
			continue
		}
		if i+1 < len(Stages) {
			return Stages[i+1]
		}
		return StageEnd
	}
	return StageEnd
}

func (s Stage) Collecting() bool {
	for _, stage := range Stages {
		if stage == s {
			return true
		}
	}
	return false
}

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Step describes how one collection stage consumes an answer.
type Step struct {
	Stage Stage
	Field FieldInfo
	// Validate is nil when any non-empty answer is accepted.
	Validate func(input string) bool
	// Retry is the reply when Validate rejects the answer.
	Retry string
	// Ask opens the following stage.
	Ask string
}

// Record is the candidate profile. Empty fields are omitted from JSON, so a
// field is present exactly when its stage has been passed.
type Record struct {
	Name       string `json:"name,omitempty" jsonschema:"description=Full name of the candidate"`
	Email      string `json:"email,omitempty" jsonschema:"description=Contact email address"`
	Phone      string `json:"phone,omitempty" jsonschema:"description=Contact phone number, digits only"`
	Experience string `json:"experience,omitempty" jsonschema:"description=Years of professional experience"`
	Position   string `json:"position,omitempty" jsonschema:"description=Position(s) applied for"`
	Location   string `json:"location,omitempty" jsonschema:"description=Current location"`
	TechStack  string `json:"tech_stack,omitempty" jsonschema:"description=Languages, frameworks and tools"`
}

// Get returns the answer recorded for stage, or "" when it is absent.
func (r Record) Get(stage Stage) string {
	switch stage {
	case StageName:
		return r.Name
	case StageEmail:
		return r.Email
	case StagePhone:
		return r.Phone
	case StageExperience:
		return r.Experience
	case StagePosition:
		return r.Position
	case StageLocation:
		return r.Location
	case StageTechStack:
		return r.TechStack
	default:
		return ""
	}
}

func (r Record) Has(stage Stage) bool {
	return r.Get(stage) != ""
}
