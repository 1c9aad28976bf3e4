package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flemzord/linekit/internal/media"
	"github.com/flemzord/linekit/internal/reply"
	"github.com/flemzord/linekit/pkg/message"
)

// Reply texts.
const (
	textNoUserID   = "Bot can't use profile API without user ID"
	textCantLeave  = "Bot can't leave from 1:1 chat"
	textLeaveGroup = "Leaving group"
	textLeaveRoom  = "Leaving room"
)

var errNoMedia = errors.New("router: no media fetcher configured")

func (r *Router) commandTable() map[Command]textHandler {
	static := func(build func() message.Reply) textHandler {
		return func(ctx context.Context, call textCall) error {
			return r.reply(ctx, call.token, build())
		}
	}
	return map[Command]textHandler{
		CommandEcho:          r.handleEcho,
		CommandProfile:       r.handleProfile,
		CommandButtons:       static(r.builder.Buttons),
		CommandConfirm:       static(r.builder.Confirm),
		CommandCarousel:      static(r.builder.Carousel),
		CommandImageCarousel: static(r.builder.ImageCarousel),
		CommandDatetime:      static(r.builder.Datetime),
		CommandImagemap:      static(r.builder.Imagemap),
		CommandBye:           r.handleBye,
		CommandPicture:       r.handlePicture,
		CommandSingleMenu:    static(r.builder.SingleCatalogMenu),
		CommandGroupMenu:     static(r.builder.MultiGroupMenu),
	}
}

func (r *Router) handleMessage(ctx context.Context, ev message.MessageEvent) error {
	token := ev.ReplyToken
	switch m := ev.Message.(type) {
	case message.Text:
		return r.handleText(ctx, ev, m)
	case message.Image:
		return r.handleImage(ctx, token, m)
	case message.Video:
		return r.handleVideo(ctx, token, m)
	case message.Audio:
		return r.handleAudio(ctx, token, m)
	case message.Location:
		return r.reply(ctx, token, r.builder.Location(m.Title, m.Address, m.Latitude, m.Longitude))
	case message.Sticker:
		return r.reply(ctx, token, r.builder.Sticker(m.PackageID, m.StickerID))
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMessage, ev.Message)
	}
}

func (r *Router) handleText(ctx context.Context, ev message.MessageEvent, m message.Text) error {
	text := message.NormalizeText(m.Text)
	cmd, _ := ParseCommand(text)
	r.logger.Debug("router: text command", "command", cmd.String())

	return r.commands[cmd](ctx, textCall{
		token:  ev.ReplyToken,
		text:   text,
		source: ev.Source,
	})
}

func (r *Router) handleEcho(ctx context.Context, call textCall) error {
	return r.replyText(ctx, call.token, call.text)
}

func (r *Router) handleProfile(ctx context.Context, call textCall) error {
	userID := ""
	if call.source != nil {
		userID = call.source.User()
	}
	if userID == "" {
		return r.replyText(ctx, call.token, textNoUserID)
	}

	p, err := r.platform.Profile(ctx, userID)
	if err != nil {
		return fmt.Errorf("router: profile %s: %w", userID, err)
	}
	return r.replyText(ctx, call.token,
		"Display name: "+p.DisplayName,
		"Status message: "+p.StatusMessage,
	)
}

func (r *Router) handleBye(ctx context.Context, call textCall) error {
	switch src := call.source.(type) {
	case message.UserSource:
		return r.replyText(ctx, call.token, textCantLeave)
	case message.GroupSource:
		if err := r.replyText(ctx, call.token, textLeaveGroup); err != nil {
			return err
		}
		if err := r.platform.LeaveGroup(ctx, src.GroupID); err != nil {
			return fmt.Errorf("router: leave group %s: %w", src.GroupID, err)
		}
		return nil
	case message.RoomSource:
		if err := r.replyText(ctx, call.token, textLeaveRoom); err != nil {
			return err
		}
		if err := r.platform.LeaveRoom(ctx, src.RoomID); err != nil {
			return fmt.Errorf("router: leave room %s: %w", src.RoomID, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownSource, call.source)
	}
}

func (r *Router) handlePicture(ctx context.Context, call textCall) error {
	images := r.builder.Catalog().PlaceholderImages()
	if len(images) == 0 {
		return r.handleEcho(ctx, call)
	}
	url := images[r.intn(len(images))]
	r.logger.Debug("router: picture", "url", url)
	return r.reply(ctx, call.token, r.builder.Image(url))
}

func (r *Router) handlePostback(ctx context.Context, ev message.PostbackEvent) error {
	data := ev.Data
	switch data {
	case reply.PostbackDate, reply.PostbackTime, reply.PostbackDatetime:
		params := ev.Params
		if params == nil {
			params = map[string]string{}
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("router: encoding postback params: %w", err)
		}
		data += "(" + string(raw) + ")"
	}
	return r.replyText(ctx, ev.ReplyToken, "Got postback: "+data)
}

func (r *Router) handleImage(ctx context.Context, token string, m message.Image) error {
	if m.Provider.IsExternal() {
		return r.reply(ctx, token, r.builder.ImageWithPreview(m.Provider.OriginalURL, m.Provider.PreviewURL))
	}
	d, err := r.fetch(ctx, "image", m.ID, r.mediaImage)
	if err != nil {
		return err
	}
	return r.reply(ctx, token, r.builder.ImageWithPreview(d.OriginalURL, d.PreviewURL))
}

func (r *Router) handleVideo(ctx context.Context, token string, m message.Video) error {
	if m.Provider.IsExternal() {
		return r.reply(ctx, token, r.builder.Video(m.Provider.OriginalURL, m.Provider.PreviewURL))
	}
	d, err := r.fetch(ctx, "video", m.ID, r.mediaVideo)
	if err != nil {
		return err
	}
	return r.reply(ctx, token, r.builder.Video(d.OriginalURL, d.PreviewURL))
}

func (r *Router) handleAudio(ctx context.Context, token string, m message.Audio) error {
	if m.Provider.IsExternal() {
		return r.reply(ctx, token, r.builder.Audio(m.Provider.OriginalURL, m.Duration))
	}
	d, err := r.fetch(ctx, "audio", m.ID, r.mediaAudio)
	if err != nil {
		return err
	}
	return r.reply(ctx, token, r.builder.Audio(d.OriginalURL, m.Duration))
}

type fetchFunc func(ctx context.Context, id string) (media.Downloaded, error)

func (r *Router) fetch(ctx context.Context, kind, id string, fn fetchFunc) (media.Downloaded, error) {
	if r.media == nil {
		r.metrics.RecordMedia(kind, OutcomeError)
		return media.Downloaded{}, errNoMedia
	}
	ctx, span := r.tracer.Start(ctx, "router.fetch_"+kind)
	defer span.End()

	d, err := fn(ctx, id)
	if err != nil {
		span.RecordError(err)
		r.metrics.RecordMedia(kind, OutcomeError)
		return media.Downloaded{}, fmt.Errorf("router: fetching %s %s: %w", kind, id, err)
	}
	r.metrics.RecordMedia(kind, OutcomeOK)
	return d, nil
}

func (r *Router) mediaImage(ctx context.Context, id string) (media.Downloaded, error) {
	return r.media.Image(ctx, id)
}

func (r *Router) mediaVideo(ctx context.Context, id string) (media.Downloaded, error) {
	return r.media.Video(ctx, id)
}

func (r *Router) mediaAudio(ctx context.Context, id string) (media.Downloaded, error) {
	return r.media.Audio(ctx, id)
}
