// Package assistant implements the conversation loop: routing utterances,
// calling the model, repairing and dispatching tool calls, and rendering tool
// results as replies.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omisdami/bankassist/config"
	"github.com/omisdami/bankassist/core"
	"github.com/omisdami/bankassist/intent"
)

// Action tells the caller what to do with the session after a turn.
type Action int

const (
	ActionNone Action = iota
	ActionExit
	ActionCleared
)

// Dispatcher sends a tool call to the gateway and returns its raw result.
// Failures come back as error-shaped results, never as Go errors.
type Dispatcher interface {
	Call(ctx context.Context, tool string, args map[string]any) any
}

// Assistant drives one conversation session per instance.
type Assistant struct {
	detector   *intent.Detector
	normalizer *Normalizer
	model      Model
	dispatcher Dispatcher
	log        zerolog.Logger
}

// New wires an assistant from its collaborators.
func New(cfg config.AssistantConfig, model Model, dispatcher Dispatcher, logger zerolog.Logger) *Assistant {
	return &Assistant{
		detector:   intent.NewDetector(cfg),
		normalizer: NewNormalizer(intent.NewResolver(cfg.AccountMappings)),
		model:      model,
		dispatcher: dispatcher,
		log:        logger,
	}
}

// ProcessTurn handles one user utterance and returns the reply. Commands,
// greetings, and farewells are answered before the model is involved;
// everything else goes to the model and lands in history.
func (a *Assistant) ProcessTurn(ctx context.Context, session *Session, input string) (string, Action) {
	input = strings.TrimSpace(input)
	if input == "" {
		return fallbackReply, ActionNone
	}

	switch cmd, arg := a.detector.DetectCommand(input); cmd {
	case intent.CommandExit:
		return pick(farewellReplies), ActionExit
	case intent.CommandClear:
		session.Clear()
		return "Conversation history cleared. What can I help you with?", ActionCleared
	case intent.CommandUser:
		session.UserID = arg
		return fmt.Sprintf("Switched to user %s. How can I help you?", arg), ActionNone
	}

	if a.detector.IsGreeting(input) {
		return pick(greetingReplies), ActionNone
	}
	if a.detector.IsFarewell(input) {
		return pick(farewellReplies), ActionExit
	}

	session.Append(core.NewUserMessage(input))
	reply := a.modelTurn(ctx, session, input)
	session.Append(core.NewAssistantMessage(reply))
	return reply, ActionNone
}

// modelTurn runs one model call and resolves every tool call it requested,
// in order, concatenating text fragments and formatted tool results.
func (a *Assistant) modelTurn(ctx context.Context, session *Session, lastUser string) string {
	resp, err := a.model.Generate(ctx, SystemPrompt(session.UserID), session.History)
	if err != nil {
		a.log.Error().Err(err).Msg("model call failed")
		return pick(errorReplies)
	}
	if len(resp.Parts) == 0 {
		return pick(greetingReplies)
	}

	var fragments []string
	for _, part := range resp.Parts {
		if part.Call == nil {
			if text := strings.TrimSpace(part.Text); text != "" {
				fragments = append(fragments, text)
			}
			continue
		}
		if strings.TrimSpace(part.Call.Name) == "" {
			// A blank tool name must not turn into a false "completed" reply.
			continue
		}
		if out := a.runTool(ctx, session, part.Call, lastUser); out != "" {
			fragments = append(fragments, out)
		}
	}

	reply := CleanReply(strings.Join(fragments, "\n\n"))
	if reply == "" {
		reply = fallbackReply
	}
	return reply
}

func (a *Assistant) runTool(ctx context.Context, session *Session, call *ToolCall, lastUser string) string {
	args := a.normalizer.Repair(call.Name, call.Args, session.UserID, lastUser)

	// A knowledge-base call for something that isn't a banking question wastes
	// a retrieval round trip; answer it here.
	if call.Name == core.ToolAnswerBankingQuestion {
		question, _ := args["question"].(string)
		if len(strings.TrimSpace(question)) <= 3 ||
			a.detector.IsGreeting(question) ||
			!a.detector.IsBankingRelated(question) {
			return pick(nonBankingReplies)
		}
	}

	a.log.Debug().Str("tool", call.Name).Interface("args", args).Msg("dispatching tool call")

	raw := a.dispatcher.Call(ctx, call.Name, args)
	return FormatResult(call.Name, Normalize(raw))
}
