package router

import (
	"context"

	"github.com/flemzord/linekit/pkg/message"
)

// Command is a text keyword the bot reacts to. Matching is exact and
// case-sensitive, after full-width spaces are normalized.
type Command int

// Known commands. CommandEcho is also the fallback for unmatched text.
const (
	CommandEcho Command = iota
	CommandProfile
	CommandButtons
	CommandConfirm
	CommandCarousel
	CommandImageCarousel
	CommandDatetime
	CommandImagemap
	CommandBye
	CommandPicture
	CommandSingleMenu
	CommandGroupMenu
)

var keywords = map[string]Command{
	"echo":           CommandEcho,
	"profile":        CommandProfile,
	"buttons":        CommandButtons,
	"confirm":        CommandConfirm,
	"carousel":       CommandCarousel,
	"image carousel": CommandImageCarousel,
	"datetime":       CommandDatetime,
	"imagemap":       CommandImagemap,
	"bye":            CommandBye,
	"圖片":             CommandPicture,
	"1":              CommandSingleMenu,
	"2":              CommandGroupMenu,
}

var commandNames = [...]string{
	CommandEcho:          "echo",
	CommandProfile:       "profile",
	CommandButtons:       "buttons",
	CommandConfirm:       "confirm",
	CommandCarousel:      "carousel",
	CommandImageCarousel: "image_carousel",
	CommandDatetime:      "datetime",
	CommandImagemap:      "imagemap",
	CommandBye:           "bye",
	CommandPicture:       "picture",
	CommandSingleMenu:    "single_menu",
	CommandGroupMenu:     "group_menu",
}

// String returns a stable name for logs and span attributes.
func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Commands returns every known command.
func Commands() []Command {
	out := make([]Command, len(commandNames))
	for i := range commandNames {
		out[i] = Command(i)
	}
	return out
}

// ParseCommand maps normalized text to its command. The second result is
// false when text is not a keyword, in which case CommandEcho is returned.
func ParseCommand(text string) (Command, bool) {
	c, ok := keywords[text]
	if !ok {
		return CommandEcho, false
	}
	return c, true
}

// textCall carries what a command handler needs about the triggering
// message.
type textCall struct {
	token  string
	text   string
	source message.Source
}

type textHandler func(ctx context.Context, call textCall) error
