package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type CommandResponder interface {
	// Respond processes a command message within the given timeout.
	Respond(ctx context.Context, timeout time.Duration, message *Message) error
	// GetCommand returns the command keyword this handler answers to.
	GetCommand() string
}

type CommandRegistry struct {
	commands map[string]CommandResponder
}

func (c *CommandRegistry) Register(handler CommandResponder) {
	if c.commands == nil {
		c.commands = make(map[string]CommandResponder)
	}

	log.Info().Str("handler", handler.GetCommand()).Msg("adding command handler to registry")
	c.commands[handler.GetCommand()] = handler
}

func (c *CommandRegistry) Get(command string) (CommandResponder, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if c.commands == nil {
		return nil, errors.New("can't fetch command, registry not initialized")
	}

	handler, ok := c.commands[command]
	if !ok {
		return nil, errors.New("command not found")
	}

	return handler, nil
}

func (c *CommandRegistry) ListCommands() []string {
	keys := make([]string, len(c.commands))

	i := 0
	for k := range c.commands {
		keys[i] = k
		i++
	}

	return keys
}

func ParseCommandArgs(args string) string {
	command := strings.Split(args, " ")
	return strings.Join(command[1:], " ")
}

func ParseCommand(args string) string {
	command := strings.Split(args, " ")
	return strings.ToLower(command[0])
}
