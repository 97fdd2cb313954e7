package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/tbxark/talentscout/agent"
	"github.com/tbxark/talentscout/config"
	"github.com/tbxark/talentscout/intake"
	"github.com/tbxark/talentscout/types"
)

func startApp(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	conf.ApplyEnv()
	if err = conf.Validate(); err != nil {
		return err
	}
	slog.SetLogLoggerLevel(conf.SlogLevel())

	if sessionKey == "" {
		sessionKey = uuid.NewString()
	}
	ctx = agent.WithStateKey(ctx, sessionKey)
	slog.Debug("Session started", "session", sessionKey)

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}
	flow, err := agent.NewChatModelFormFlow(intake.CandidateForm{}, cm, conf.ScreeningOptions()...)
	if err != nil {
		return err
	}
	sessions := agent.NewSessions(flow, agent.NewMemoryStateReadWriter())
	scout := agent.NewAgent(
		"TalentScout",
		"A hiring assistant that screens candidates via conversation",
		sessions,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: scout,
	})

	fmt.Fprintln(out, intake.PrivacyNotice)
	fmt.Fprintln(out)
	view, err := sessions.View(ctx)
	if err != nil {
		return err
	}
	for _, msg := range view {
		fmt.Fprintf(out, "TalentScout: %s\n", msg.Content)
	}

	reader := bufio.NewReader(in)
	profilePrinted := false
	for {
		fmt.Fprint(out, "You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil && (!errors.Is(rErr, io.EOF) || input == "") {
			fmt.Fprintln(out, "\nInput closed. Goodbye!")
			return nil
		}
		input = strings.TrimRight(input, "\r\n")

		exit, tErr := runTurn(ctx, runner, input, out)
		if tErr != nil {
			return tErr
		}
		if exit {
			return nil
		}
		if showProfile && !profilePrinted {
			profilePrinted = printProfile(ctx, flow, sessions, out)
		}
	}
}

func runTurn(ctx context.Context, runner *adk.Runner, input string, out io.Writer) (bool, error) {
	iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
	exit := false
	for {
		event, ok := iter.Next()
		if !ok {
			return exit, nil
		}
		if event.Err != nil {
			return false, event.Err
		}
		if event.Output != nil && event.Output.MessageOutput != nil {
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return false, mErr
			}
			fmt.Fprintf(out, "TalentScout: %s\n", msg.Content)
		}
		if event.Action != nil && event.Action.Exit {
			exit = true
		}
	}
}

// printProfile prints the recruiter summary once the screening has ended.
func printProfile(ctx context.Context, flow *agent.FormFlow, sessions *agent.Sessions, out io.Writer) bool {
	state, ok, err := sessions.State(ctx)
	if err != nil || !ok || state.Stage != types.StageEnd {
		return false
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, flow.Summary(state))
	return true
}
