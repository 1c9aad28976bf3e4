// Package reply builds outbound messages. Everything here is pure: a Builder
// holds the public base URL and the catalog, both fixed at construction, and
// every method returns fresh values without performing I/O.
package reply

import (
	"strings"

	"github.com/flemzord/linekit/internal/catalog"
	"github.com/flemzord/linekit/pkg/message"
)

// FlexAltText is the alternative text of both flex menus.
const FlexAltText = "This is a Flex Message"

// Builder constructs replies. It is safe for concurrent use.
type Builder struct {
	baseURL string
	catalog *catalog.Catalog
}

// New returns a Builder rooted at baseURL. A trailing slash is trimmed so
// asset paths can be appended verbatim.
func New(baseURL string, cat *catalog.Catalog) *Builder {
	return &Builder{
		baseURL: strings.TrimRight(baseURL, "/"),
		catalog: cat,
	}
}

// BaseURL returns the public base URL replies are built against.
func (b *Builder) BaseURL() string { return b.baseURL }

// Catalog returns the catalog the menus are built from.
func (b *Builder) Catalog() *catalog.Catalog { return b.catalog }

// URL joins a path to the public base URL.
func (b *Builder) URL(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Texts returns one text reply per input, in order.
func (b *Builder) Texts(texts ...string) []message.Reply {
	return message.NewTextReplies(texts...)
}

// Image returns an image reply whose preview is the original itself.
func (b *Builder) Image(url string) message.Reply {
	return message.ImageReply{OriginalContentURL: url, PreviewImageURL: url}
}

// ImageWithPreview returns an image reply with a distinct preview.
func (b *Builder) ImageWithPreview(original, preview string) message.Reply {
	return message.ImageReply{OriginalContentURL: original, PreviewImageURL: preview}
}

// Video returns a video reply.
func (b *Builder) Video(original, preview string) message.Reply {
	return message.VideoReply{OriginalContentURL: original, PreviewImageURL: preview}
}

// Audio returns an audio reply. duration is in milliseconds.
func (b *Builder) Audio(original string, duration int64) message.Reply {
	return message.AudioReply{OriginalContentURL: original, Duration: duration}
}

// Location returns a location reply.
func (b *Builder) Location(title, address string, lat, lng float64) message.Reply {
	return message.LocationReply{Title: title, Address: address, Latitude: lat, Longitude: lng}
}

// Sticker returns a sticker reply.
func (b *Builder) Sticker(packageID, stickerID string) message.Reply {
	return message.StickerReply{PackageID: packageID, StickerID: stickerID}
}
