package message

// ReplyType discriminates the variant of an outbound Reply.
type ReplyType string

// Supported reply types.
const (
	ReplyText     ReplyType = "text"
	ReplyImage    ReplyType = "image"
	ReplyVideo    ReplyType = "video"
	ReplyAudio    ReplyType = "audio"
	ReplyLocation ReplyType = "location"
	ReplySticker  ReplyType = "sticker"
	ReplyTemplate ReplyType = "template"
	ReplyImagemap ReplyType = "imagemap"
	ReplyFlex     ReplyType = "flex"
)

// Reply is one outbound message. A reply call carries one or more of them,
// bound to a single reply token.
type Reply interface {
	Type() ReplyType

	isReply()
}

// TextReply sends plain text.
type TextReply struct {
	Text string `json:"text"`
}

// ImageReply sends an image by URL.
type ImageReply struct {
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

// VideoReply sends a video by URL.
type VideoReply struct {
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

// AudioReply sends an audio clip by URL. Duration is in milliseconds.
type AudioReply struct {
	OriginalContentURL string `json:"originalContentUrl"`
	Duration           int64  `json:"duration"`
}

// LocationReply sends a location pin.
type LocationReply struct {
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StickerReply sends a sticker.
type StickerReply struct {
	PackageID string `json:"packageId"`
	StickerID string `json:"stickerId"`
}

// TemplateReply sends a template message.
type TemplateReply struct {
	AltText  string   `json:"altText"`
	Template Template `json:"template"`
}

// ImagemapReply sends an imagemap: a base image with tappable areas and an
// optional embedded video.
type ImagemapReply struct {
	BaseURL  string           `json:"baseUrl"`
	AltText  string           `json:"altText"`
	BaseSize Size             `json:"baseSize"`
	Actions  []ImagemapAction `json:"actions"`
	Video    *ImagemapVideo   `json:"video,omitempty"`
}

// FlexReply sends a flex layout.
type FlexReply struct {
	AltText  string        `json:"altText"`
	Contents FlexContainer `json:"contents"`
}

func (TextReply) Type() ReplyType     { return ReplyText }
func (ImageReply) Type() ReplyType    { return ReplyImage }
func (VideoReply) Type() ReplyType    { return ReplyVideo }
func (AudioReply) Type() ReplyType    { return ReplyAudio }
func (LocationReply) Type() ReplyType { return ReplyLocation }
func (StickerReply) Type() ReplyType  { return ReplySticker }
func (TemplateReply) Type() ReplyType { return ReplyTemplate }
func (ImagemapReply) Type() ReplyType { return ReplyImagemap }
func (FlexReply) Type() ReplyType     { return ReplyFlex }

func (TextReply) isReply()     {}
func (ImageReply) isReply()    {}
func (VideoReply) isReply()    {}
func (AudioReply) isReply()    {}
func (LocationReply) isReply() {}
func (StickerReply) isReply()  {}
func (TemplateReply) isReply() {}
func (ImagemapReply) isReply() {}
func (FlexReply) isReply()     {}

// NewTextReplies returns one TextReply per text, in order.
func NewTextReplies(texts ...string) []Reply {
	out := make([]Reply, len(texts))
	for i, t := range texts {
		out[i] = TextReply{Text: t}
	}
	return out
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area is a rectangle on an imagemap, in base-size pixels.
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImagemapAction is a tappable area on an imagemap.
type ImagemapAction interface {
	isImagemapAction()
}

// ImagemapURIAction opens LinkURI when its area is tapped.
type ImagemapURIAction struct {
	Area    Area   `json:"area"`
	LinkURI string `json:"linkUri"`
}

// ImagemapMessageAction sends Text when its area is tapped.
type ImagemapMessageAction struct {
	Area Area   `json:"area"`
	Text string `json:"text"`
}

func (ImagemapURIAction) isImagemapAction()     {}
func (ImagemapMessageAction) isImagemapAction() {}

// ImagemapVideo plays a video inside an imagemap area. ExternalLink is shown
// after playback ends.
type ImagemapVideo struct {
	OriginalContentURL string        `json:"originalContentUrl"`
	PreviewImageURL    string        `json:"previewImageUrl"`
	Area               Area          `json:"area"`
	ExternalLink       *ExternalLink `json:"externalLink,omitempty"`
}

// ExternalLink is a labelled link.
type ExternalLink struct {
	LinkURI string `json:"linkUri"`
	Label   string `json:"label"`
}
