package command

import "context"

type Command string

const (
	// Answer is input the current stage should consume.
	Answer   Command = "answer"
	Empty    Command = "empty"
	Withdraw Command = "withdraw"
)

type Parser interface {
	ParseCommand(ctx context.Context, input string) (Command, error)
}
