package chatbot

import (
	"fmt"
	"strings"

	"geminibot/internal/conversation"
	"geminibot/internal/llm"

	"go.uber.org/zap"
)

const welcomeText = `Welcome! Send me a message and I will answer with Gemini.
/reset clears the conversation and lets you pick a model.
/model shows which model is in use.
/help shows this message.`

// ParseCommand extracts the command from a /-prefixed message. A command
// addressed to another bot with /cmd@name comes back with an empty Name.
func ParseCommand(text, botUsername string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return Command{}, true
	}

	name, mention, _ := strings.Cut(fields[0], "@")
	if mention != "" && botUsername != "" && !strings.EqualFold(mention, botUsername) {
		return Command{}, true
	}
	name = strings.ToLower(name)

	if token, ok := strings.CutPrefix(name, CommandReset+"_"); ok {
		return Command{Name: CommandReset, Arg: token}, true
	}
	if name == CommandReset && len(fields) > 1 {
		return Command{Name: CommandReset, Arg: fields[1]}, true
	}
	return Command{Name: name}, true
}

// CommandProcessor handles bot command processing
type CommandProcessor struct {
	conversations conversation.ConversationService
	keyboards     *KeyboardBuilder
	logger        *zap.Logger
}

// NewCommandProcessor creates a new CommandProcessor instance
func NewCommandProcessor(conversations conversation.ConversationService, keyboards *KeyboardBuilder, logger *zap.Logger) *CommandProcessor {
	return &CommandProcessor{
		conversations: conversations,
		keyboards:     keyboards,
		logger:        logger,
	}
}

// Process runs cmd for msg's chat. A nil reply means the command is ignored.
func (cp *CommandProcessor) Process(msg *Message, cmd Command) (*Reply, error) {
	cp.logger.Info("Processing command",
		zap.Int64("chat_id", msg.ChatID.Int64()),
		zap.String("command", cmd.Name),
		zap.String("arg", cmd.Arg))

	switch cmd.Name {
	case CommandStart:
		cp.conversations.Start(msg.ChatID)
		return &Reply{Text: welcomeText, Keyboard: cp.keyboards.BuildRemoveKeyboard()}, nil
	case CommandHelp:
		return &Reply{Text: welcomeText}, nil
	case CommandModel:
		model, _ := cp.conversations.Model(msg.ChatID)
		return &Reply{Text: "Current model: " + model}, nil
	case CommandReset:
		return cp.processReset(msg, cmd.Arg)
	default:
		return nil, nil
	}
}

func (cp *CommandProcessor) processReset(msg *Message, token string) (*Reply, error) {
	info, err := cp.conversations.Reset(msg.ChatID, token)
	if conversation.IsUnknownModelError(err) {
		return &Reply{
			Text:     fmt.Sprintf("Unknown model %q. Available models:\n%s", token, strings.Join(llm.Models(), "\n")),
			Keyboard: cp.keyboards.BuildModelKeyboard(),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if token == "" {
		return &Reply{
			Text:     fmt.Sprintf("Conversation cleared. Using %s.\nPick another model below or just keep writing.", info.Model),
			Keyboard: cp.keyboards.BuildModelKeyboard(),
		}, nil
	}
	return &Reply{
		Text:     fmt.Sprintf("New conversation started with %s.", info.Model),
		Keyboard: cp.keyboards.BuildRemoveKeyboard(),
	}, nil
}
