package message

import (
	"strings"
	"time"
)

// EventKind discriminates the variant of an inbound Event.
type EventKind string

// Supported event kinds.
const (
	KindMessage  EventKind = "message"
	KindFollow   EventKind = "follow"
	KindUnfollow EventKind = "unfollow"
	KindJoin     EventKind = "join"
	KindLeave    EventKind = "leave"
	KindPostback EventKind = "postback"
	KindBeacon   EventKind = "beacon"
)

// Event is one inbound webhook event. It is consumed exactly once by the
// router and never persisted.
type Event interface {
	// Kind returns the event discriminator.
	Kind() EventKind
	// Token returns the single-use reply token, or "" for events that
	// cannot be replied to.
	Token() string
	// From returns the conversation the event belongs to.
	From() Source

	isEvent()
}

// Header carries the fields shared by every event variant. WebhookEventID
// is the platform's unique event id and is only used for log correlation.
type Header struct {
	ReplyToken     string
	Source         Source
	Timestamp      time.Time
	WebhookEventID string
	Redelivery     bool
}

// Token implements Event.
func (h Header) Token() string { return h.ReplyToken }

// From implements Event.
func (h Header) From() Source { return h.Source }

// MessageEvent carries a user message.
type MessageEvent struct {
	Header
	Message Content
}

// FollowEvent is sent when a user adds the bot as a friend.
type FollowEvent struct{ Header }

// UnfollowEvent is sent when a user blocks the bot. It has no reply token.
type UnfollowEvent struct{ Header }

// JoinEvent is sent when the bot joins a group or room.
type JoinEvent struct{ Header }

// LeaveEvent is sent when the bot is removed from a group or room.
type LeaveEvent struct{ Header }

// PostbackEvent is sent when a user triggers a postback action.
type PostbackEvent struct {
	Header
	Data string
	// Params holds date/time picker results keyed by "date", "time" or
	// "datetime".
	Params map[string]string
}

// BeaconEvent is sent when a user enters the range of a beacon.
type BeaconEvent struct {
	Header
	HardwareID    string
	BeaconType    string
	DeviceMessage string
}

func (MessageEvent) Kind() EventKind  { return KindMessage }
func (FollowEvent) Kind() EventKind   { return KindFollow }
func (UnfollowEvent) Kind() EventKind { return KindUnfollow }
func (JoinEvent) Kind() EventKind     { return KindJoin }
func (LeaveEvent) Kind() EventKind    { return KindLeave }
func (PostbackEvent) Kind() EventKind { return KindPostback }
func (BeaconEvent) Kind() EventKind   { return KindBeacon }

func (MessageEvent) isEvent()  {}
func (FollowEvent) isEvent()   {}
func (UnfollowEvent) isEvent() {}
func (JoinEvent) isEvent()     {}
func (LeaveEvent) isEvent()    {}
func (PostbackEvent) isEvent() {}
func (BeaconEvent) isEvent()   {}

// ContentType discriminates the variant of a message Content.
type ContentType string

// Supported content types.
const (
	ContentText     ContentType = "text"
	ContentImage    ContentType = "image"
	ContentVideo    ContentType = "video"
	ContentAudio    ContentType = "audio"
	ContentLocation ContentType = "location"
	ContentSticker  ContentType = "sticker"
)

// Content is the payload of a MessageEvent.
type Content interface {
	Type() ContentType
	// MessageID returns the platform message id.
	MessageID() string

	isContent()
}

// ProviderKind tells whether media bytes live on the platform or at an
// external URL.
type ProviderKind string

const (
	// ProviderPlatform content must be downloaded through the content API.
	ProviderPlatform ProviderKind = "line"
	// ProviderExternal content is already reachable at OriginalURL.
	ProviderExternal ProviderKind = "external"
)

// ContentProvider describes where the bytes of a media message live.
type ContentProvider struct {
	Kind        ProviderKind `json:"kind"`
	OriginalURL string       `json:"original_url,omitempty"`
	PreviewURL  string       `json:"preview_url,omitempty"`
}

// IsExternal reports whether the media is hosted outside the platform.
func (p ContentProvider) IsExternal() bool {
	return p.Kind == ProviderExternal
}

// Text is a text message.
type Text struct {
	ID   string
	Text string
}

// Image is an image message.
type Image struct {
	ID       string
	Provider ContentProvider
}

// Video is a video message. Duration is in milliseconds.
type Video struct {
	ID       string
	Duration int64
	Provider ContentProvider
}

// Audio is an audio message. Duration is in milliseconds.
type Audio struct {
	ID       string
	Duration int64
	Provider ContentProvider
}

// Location is a shared location.
type Location struct {
	ID        string
	Title     string
	Address   string
	Latitude  float64
	Longitude float64
}

// Sticker is a sticker message.
type Sticker struct {
	ID        string
	PackageID string
	StickerID string
}

func (Text) Type() ContentType     { return ContentText }
func (Image) Type() ContentType    { return ContentImage }
func (Video) Type() ContentType    { return ContentVideo }
func (Audio) Type() ContentType    { return ContentAudio }
func (Location) Type() ContentType { return ContentLocation }
func (Sticker) Type() ContentType  { return ContentSticker }

func (c Text) MessageID() string     { return c.ID }
func (c Image) MessageID() string    { return c.ID }
func (c Video) MessageID() string    { return c.ID }
func (c Audio) MessageID() string    { return c.ID }
func (c Location) MessageID() string { return c.ID }
func (c Sticker) MessageID() string  { return c.ID }

func (Text) isContent()     {}
func (Image) isContent()    {}
func (Video) isContent()    {}
func (Audio) isContent()    {}
func (Location) isContent() {}
func (Sticker) isContent()  {}

// ideographicSpace is U+3000, the full-width space produced by CJK input methods.
const ideographicSpace = "　"

// NormalizeText replaces full-width spaces with ASCII spaces.
func NormalizeText(s string) string {
	return strings.ReplaceAll(s, ideographicSpace, " ")
}
