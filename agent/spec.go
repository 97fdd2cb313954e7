package agent

import (
	"github.com/tbxark/talentscout/types"
)

type FormSpec interface {
	SystemPrompt() string
	Greeting() string

	Step(stage types.Stage) (types.Step, bool)
	AllowedPaths() []string

	MissingFacts(current types.Record) []types.FieldInfo
	Summary(current types.Record) string
}
