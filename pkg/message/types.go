// Package message defines the platform-agnostic contract between the LINE
// channel and the event router: inbound events, their sources and message
// contents, and the outbound reply messages.
//
// Every union is closed. Variants implement an unexported marker method, so
// no package outside this one can add a variant and every type switch over a
// union only needs to cover the variants declared here.
package message

// SourceType indicates the kind of conversation an event came from.
type SourceType string

const (
	// SourceUser is a one-to-one chat with a user.
	SourceUser SourceType = "user"
	// SourceGroup is a group chat.
	SourceGroup SourceType = "group"
	// SourceRoom is a multi-person room.
	SourceRoom SourceType = "room"
)

// Source identifies where an inbound event originated.
type Source interface {
	// Type returns the container kind.
	Type() SourceType
	// ID returns the stable identifier of the container.
	ID() string
	// User returns the sender's user ID, or "" when the platform withheld it.
	User() string

	isSource()
}

// UserSource is a one-to-one chat.
type UserSource struct {
	UserID string `json:"user_id"`
}

// GroupSource is a group chat. UserID is set when the sender consented.
type GroupSource struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id,omitempty"`
}

// RoomSource is a multi-person room. UserID is set when the sender consented.
type RoomSource struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id,omitempty"`
}

func (UserSource) Type() SourceType  { return SourceUser }
func (GroupSource) Type() SourceType { return SourceGroup }
func (RoomSource) Type() SourceType  { return SourceRoom }

func (s UserSource) ID() string  { return s.UserID }
func (s GroupSource) ID() string { return s.GroupID }
func (s RoomSource) ID() string  { return s.RoomID }

func (s UserSource) User() string  { return s.UserID }
func (s GroupSource) User() string { return s.UserID }
func (s RoomSource) User() string  { return s.UserID }

func (UserSource) isSource()  {}
func (GroupSource) isSource() {}
func (RoomSource) isSource()  {}

// Profile is the public profile of a platform user.
type Profile struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	StatusMessage string `json:"status_message,omitempty"`
	PictureURL    string `json:"picture_url,omitempty"`
}
