package command

import (
	"context"
	"strings"
)

type LocalCommandParser struct {
	WithdrawKeywords []string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		WithdrawKeywords: []string{"exit", "quit", "stop"},
	}
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Empty, nil
	}
	for _, keyword := range p.WithdrawKeywords {
		if normalized == strings.ToLower(keyword) {
			return Withdraw, nil
		}
	}
	return Answer, nil
}
