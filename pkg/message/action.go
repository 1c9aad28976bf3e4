package message

// Action is what happens when a user taps a button, column or flex
// component.
type Action interface {
	// ActionLabel returns the label shown to the user.
	ActionLabel() string

	isAction()
}

// URIAction opens a URI.
type URIAction struct {
	Label string
	URI   string
}

// MessageAction makes the user send Text as a new message.
type MessageAction struct {
	Label string
	Text  string
}

// PostbackAction sends Data back to the bot as a postback event. When Text
// is set, it is also posted in the chat as the user's message.
type PostbackAction struct {
	Label string
	Data  string
	Text  string
}

// PickerMode selects what a DatetimePickerAction asks for.
type PickerMode string

// Picker modes.
const (
	PickDate     PickerMode = "date"
	PickTime     PickerMode = "time"
	PickDatetime PickerMode = "datetime"
)

// DatetimePickerAction opens a date/time picker; the selection comes back as
// a postback whose Params carry the chosen value.
type DatetimePickerAction struct {
	Label string
	Data  string
	Mode  PickerMode
}

func (a URIAction) ActionLabel() string            { return a.Label }
func (a MessageAction) ActionLabel() string        { return a.Label }
func (a PostbackAction) ActionLabel() string       { return a.Label }
func (a DatetimePickerAction) ActionLabel() string { return a.Label }

func (URIAction) isAction()            {}
func (MessageAction) isAction()        {}
func (PostbackAction) isAction()       {}
func (DatetimePickerAction) isAction() {}
