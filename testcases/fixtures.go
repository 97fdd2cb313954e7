package testcases

import (
	"github.com/tbxark/talentscout/types"
)

const (
	JaneQuestions  = "Python:\n1. Explain list comprehensions.\n2. What is the GIL?\nPostgreSQL:\n1. What is an index?"
	JaneConfidence = "Confidence Level: High\nReason: Clear, complete and consistent answers."
)

// JaneAnswers are the answers of a complete interview, one per collecting stage.
var JaneAnswers = []string{
	"Jane Doe",
	"jane@x.com",
	"12345678",
	"3",
	"Backend Engineer",
	"Berlin",
	"Python, PostgreSQL",
}

var JaneRecord = types.Record{
	Name:       "Jane Doe",
	Email:      "jane@x.com",
	Phone:      "12345678",
	Experience: "3",
	Position:   "Backend Engineer",
	Location:   "Berlin",
	TechStack:  "Python, PostgreSQL",
}

// JaneScript is the pair of completions a successful screening consumes.
func JaneScript() []Completion {
	return []Completion{{Content: JaneQuestions}, {Content: JaneConfidence}}
}
