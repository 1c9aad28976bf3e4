package line

import (
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/pkg/message"
)

// convertEvent maps an SDK event onto the message model. Event and content
// variants without a counterpart yield the router's classification errors.
func convertEvent(ev webhook.EventInterface) (message.Event, error) {
	switch e := ev.(type) {
	case webhook.MessageEvent:
		content, err := convertContent(e.Message)
		if err != nil {
			return nil, err
		}
		return message.MessageEvent{
			Header:  header(e.ReplyToken, e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext),
			Message: content,
		}, nil
	case webhook.FollowEvent:
		return message.FollowEvent{Header: header(e.ReplyToken, e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}, nil
	case webhook.UnfollowEvent:
		return message.UnfollowEvent{Header: header("", e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}, nil
	case webhook.JoinEvent:
		return message.JoinEvent{Header: header(e.ReplyToken, e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}, nil
	case webhook.LeaveEvent:
		return message.LeaveEvent{Header: header("", e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}, nil
	case webhook.PostbackEvent:
		out := message.PostbackEvent{Header: header(e.ReplyToken, e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}
		if e.Postback != nil {
			out.Data = e.Postback.Data
			out.Params = e.Postback.Params
		}
		return out, nil
	case webhook.BeaconEvent:
		out := message.BeaconEvent{Header: header(e.ReplyToken, e.Source, e.Timestamp, e.WebhookEventId, e.DeliveryContext)}
		if e.Beacon != nil {
			out.HardwareID = e.Beacon.Hwid
			out.BeaconType = string(e.Beacon.Type)
			out.DeviceMessage = e.Beacon.Dm
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", router.ErrUnknownEvent, ev)
	}
}

// replyToken returns the reply token of any SDK event that has one,
// including message events whose content has no model counterpart.
func replyToken(ev webhook.EventInterface) string {
	switch e := ev.(type) {
	case webhook.MessageEvent:
		return e.ReplyToken
	case webhook.FollowEvent:
		return e.ReplyToken
	case webhook.JoinEvent:
		return e.ReplyToken
	case webhook.PostbackEvent:
		return e.ReplyToken
	case webhook.BeaconEvent:
		return e.ReplyToken
	case webhook.MemberJoinedEvent:
		return e.ReplyToken
	case webhook.ThingsEvent:
		return e.ReplyToken
	case webhook.VideoPlayCompleteEvent:
		return e.ReplyToken
	default:
		return ""
	}
}

func header(token string, src webhook.SourceInterface, ts int64, id string, dc *webhook.DeliveryContext) message.Header {
	h := message.Header{
		ReplyToken:     token,
		Source:         convertSource(src),
		WebhookEventID: id,
	}
	if ts > 0 {
		h.Timestamp = time.UnixMilli(ts)
	}
	if dc != nil {
		h.Redelivery = dc.IsRedelivery
	}
	return h
}

// convertSource returns nil for a missing or unknown source.
func convertSource(src webhook.SourceInterface) message.Source {
	switch s := src.(type) {
	case webhook.UserSource:
		return message.UserSource{UserID: s.UserId}
	case webhook.GroupSource:
		return message.GroupSource{GroupID: s.GroupId, UserID: s.UserId}
	case webhook.RoomSource:
		return message.RoomSource{RoomID: s.RoomId, UserID: s.UserId}
	default:
		return nil
	}
}

func convertContent(c webhook.MessageContentInterface) (message.Content, error) {
	switch m := c.(type) {
	case webhook.TextMessageContent:
		return message.Text{ID: m.Id, Text: m.Text}, nil
	case webhook.ImageMessageContent:
		return message.Image{ID: m.Id, Provider: convertProvider(m.ContentProvider)}, nil
	case webhook.VideoMessageContent:
		return message.Video{ID: m.Id, Duration: m.Duration, Provider: convertProvider(m.ContentProvider)}, nil
	case webhook.AudioMessageContent:
		return message.Audio{ID: m.Id, Duration: m.Duration, Provider: convertProvider(m.ContentProvider)}, nil
	case webhook.LocationMessageContent:
		return message.Location{
			ID:        m.Id,
			Title:     m.Title,
			Address:   m.Address,
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		}, nil
	case webhook.StickerMessageContent:
		return message.Sticker{ID: m.Id, PackageID: m.PackageId, StickerID: m.StickerId}, nil
	default:
		return nil, fmt.Errorf("%w: %T", router.ErrUnknownMessage, c)
	}
}

// convertProvider treats a missing provider as platform-hosted content.
func convertProvider(p *webhook.ContentProvider) message.ContentProvider {
	if p == nil {
		return message.ContentProvider{Kind: message.ProviderPlatform}
	}
	kind := message.ProviderPlatform
	if string(p.Type) == string(message.ProviderExternal) {
		kind = message.ProviderExternal
	}
	return message.ContentProvider{
		Kind:        kind,
		OriginalURL: p.OriginalContentUrl,
		PreviewURL:  p.PreviewImageUrl,
	}
}
