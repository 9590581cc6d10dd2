// Package commands implements the chat-style command surface: "!draft"
// sub-commands for registering, voting and committing picks, "!card"
// lookups and "!ping".
package commands

import (
	"context"
	"strings"
)

// Request is one chat message.
type Request struct {
	// ID identifies the request in logs.
	ID string
	// User is the author's display name; votes and ownership key on it.
	User string
	// Channel is the channel id checked against the allow-list.
	Channel string
	// ChannelName is matched against the channel name prefix.
	ChannelName string
	// Text is the raw message.
	Text string
}

// Command is one "!draft" sub-command.
type Command interface {
	// Execute runs the command with the text after the sub-command name
	// and appends its output to reply.
	Execute(ctx context.Context, req Request, args string, reply *Reply) error

	// GetName returns the sub-command name, e.g. "vote".
	GetName() string

	// GetDescription returns the help line.
	GetDescription() string
}

// BaseCommand provides the name and description of a Command.
type BaseCommand struct {
	name        string
	description string
}

// GetName returns the command name.
func (c *BaseCommand) GetName() string {
	return c.name
}

// GetDescription returns the command description.
func (c *BaseCommand) GetDescription() string {
	return c.description
}

type funcCommand struct {
	BaseCommand
	usage string
	fn    func(ctx context.Context, req Request, args string, reply *Reply) error
}

// Usage returns the argument synopsis shown in help.
func (c *funcCommand) Usage() string {
	return c.usage
}

func (c *funcCommand) Execute(ctx context.Context, req Request, args string, reply *Reply) error {
	return c.fn(ctx, req, args, reply)
}

func newCommand(name, usage, description string, fn func(context.Context, Request, string, *Reply) error) Command {
	return &funcCommand{BaseCommand: BaseCommand{name: name, description: description}, usage: usage, fn: fn}
}

// splitCommand splits text into its first word and the trimmed rest.
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if i := strings.IndexFunc(text, isSpace); i >= 0 {
		return text[:i], strings.TrimSpace(text[i+1:])
	}
	return text, ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
