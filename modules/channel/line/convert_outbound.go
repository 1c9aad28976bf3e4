package line

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/flemzord/linekit/pkg/message"
)

// convertReplies maps reply messages onto the SDK message types, in order.
func convertReplies(msgs []message.Reply) ([]messaging_api.MessageInterface, error) {
	out := make([]messaging_api.MessageInterface, 0, len(msgs))
	for i, m := range msgs {
		c, err := convertReply(m)
		if err != nil {
			return nil, fmt.Errorf("line: message %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func convertReply(m message.Reply) (messaging_api.MessageInterface, error) {
	switch r := m.(type) {
	case message.TextReply:
		return &messaging_api.TextMessage{Text: r.Text}, nil
	case message.ImageReply:
		return &messaging_api.ImageMessage{
			OriginalContentUrl: r.OriginalContentURL,
			PreviewImageUrl:    r.PreviewImageURL,
		}, nil
	case message.VideoReply:
		return &messaging_api.VideoMessage{
			OriginalContentUrl: r.OriginalContentURL,
			PreviewImageUrl:    r.PreviewImageURL,
		}, nil
	case message.AudioReply:
		return &messaging_api.AudioMessage{
			OriginalContentUrl: r.OriginalContentURL,
			Duration:           r.Duration,
		}, nil
	case message.LocationReply:
		return &messaging_api.LocationMessage{
			Title:     r.Title,
			Address:   r.Address,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		}, nil
	case message.StickerReply:
		return &messaging_api.StickerMessage{PackageId: r.PackageID, StickerId: r.StickerID}, nil
	case message.TemplateReply:
		tmpl, err := convertTemplate(r.Template)
		if err != nil {
			return nil, err
		}
		return &messaging_api.TemplateMessage{AltText: r.AltText, Template: tmpl}, nil
	case message.ImagemapReply:
		return convertImagemap(r)
	case message.FlexReply:
		contents, err := convertFlexContainer(r.Contents)
		if err != nil {
			return nil, err
		}
		return &messaging_api.FlexMessage{AltText: r.AltText, Contents: contents}, nil
	default:
		return nil, fmt.Errorf("unsupported reply %T", m)
	}
}

func convertTemplate(t message.Template) (messaging_api.TemplateInterface, error) {
	switch tm := t.(type) {
	case message.ButtonsTemplate:
		actions, err := convertActions(tm.Actions)
		if err != nil {
			return nil, err
		}
		return &messaging_api.ButtonsTemplate{
			ThumbnailImageUrl: tm.ThumbnailImageURL,
			Title:             tm.Title,
			Text:              tm.Text,
			Actions:           actions,
		}, nil
	case message.ConfirmTemplate:
		actions, err := convertActions(tm.Actions)
		if err != nil {
			return nil, err
		}
		return &messaging_api.ConfirmTemplate{Text: tm.Text, Actions: actions}, nil
	case message.CarouselTemplate:
		cols := make([]messaging_api.CarouselColumn, 0, len(tm.Columns))
		for _, c := range tm.Columns {
			actions, err := convertActions(c.Actions)
			if err != nil {
				return nil, err
			}
			cols = append(cols, messaging_api.CarouselColumn{
				ThumbnailImageUrl: c.ThumbnailImageURL,
				Title:             c.Title,
				Text:              c.Text,
				Actions:           actions,
			})
		}
		return &messaging_api.CarouselTemplate{Columns: cols}, nil
	case message.ImageCarouselTemplate:
		cols := make([]messaging_api.ImageCarouselColumn, 0, len(tm.Columns))
		for _, c := range tm.Columns {
			action, err := convertAction(c.Action)
			if err != nil {
				return nil, err
			}
			cols = append(cols, messaging_api.ImageCarouselColumn{ImageUrl: c.ImageURL, Action: action})
		}
		return &messaging_api.ImageCarouselTemplate{Columns: cols}, nil
	default:
		return nil, fmt.Errorf("unsupported template %T", t)
	}
}

func convertActions(in []message.Action) ([]messaging_api.ActionInterface, error) {
	out := make([]messaging_api.ActionInterface, 0, len(in))
	for _, a := range in {
		c, err := convertAction(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func convertAction(a message.Action) (messaging_api.ActionInterface, error) {
	switch ac := a.(type) {
	case message.URIAction:
		return &messaging_api.UriAction{Label: ac.Label, Uri: ac.URI}, nil
	case message.MessageAction:
		return &messaging_api.MessageAction{Label: ac.Label, Text: ac.Text}, nil
	case message.PostbackAction:
		return &messaging_api.PostbackAction{Label: ac.Label, Data: ac.Data, DisplayText: ac.Text}, nil
	case message.DatetimePickerAction:
		return &messaging_api.DatetimePickerAction{
			Label: ac.Label,
			Data:  ac.Data,
			Mode:  messaging_api.DatetimePickerActionMODE(ac.Mode),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported action %T", a)
	}
}

func convertImagemap(r message.ImagemapReply) (*messaging_api.ImagemapMessage, error) {
	actions := make([]messaging_api.ImagemapActionInterface, 0, len(r.Actions))
	for _, a := range r.Actions {
		switch ac := a.(type) {
		case message.ImagemapURIAction:
			actions = append(actions, &messaging_api.UriImagemapAction{Area: area(ac.Area), LinkUri: ac.LinkURI})
		case message.ImagemapMessageAction:
			actions = append(actions, &messaging_api.MessageImagemapAction{Area: area(ac.Area), Text: ac.Text})
		default:
			return nil, fmt.Errorf("unsupported imagemap action %T", a)
		}
	}

	out := &messaging_api.ImagemapMessage{
		BaseUrl: r.BaseURL,
		AltText: r.AltText,
		BaseSize: &messaging_api.ImagemapBaseSize{
			Width:  int32(r.BaseSize.Width),
			Height: int32(r.BaseSize.Height),
		},
		Actions: actions,
	}
	if v := r.Video; v != nil {
		out.Video = &messaging_api.ImagemapVideo{
			OriginalContentUrl: v.OriginalContentURL,
			PreviewImageUrl:    v.PreviewImageURL,
			Area:               area(v.Area),
		}
		if l := v.ExternalLink; l != nil {
			out.Video.ExternalLink = &messaging_api.ImagemapExternalLink{LinkUri: l.LinkURI, Label: l.Label}
		}
	}
	return out, nil
}

func area(a message.Area) *messaging_api.ImagemapArea {
	return &messaging_api.ImagemapArea{
		X:      int32(a.X),
		Y:      int32(a.Y),
		Width:  int32(a.Width),
		Height: int32(a.Height),
	}
}

func convertFlexContainer(c message.FlexContainer) (messaging_api.FlexContainerInterface, error) {
	switch fc := c.(type) {
	case message.FlexBubble:
		return convertBubble(fc)
	case message.FlexCarousel:
		bubbles := make([]messaging_api.FlexBubble, 0, len(fc.Bubbles))
		for _, b := range fc.Bubbles {
			cb, err := convertBubble(b)
			if err != nil {
				return nil, err
			}
			bubbles = append(bubbles, *cb)
		}
		return &messaging_api.FlexCarousel{Contents: bubbles}, nil
	default:
		return nil, fmt.Errorf("unsupported flex container %T", c)
	}
}

func convertBubble(b message.FlexBubble) (*messaging_api.FlexBubble, error) {
	out := &messaging_api.FlexBubble{Size: messaging_api.FlexBubbleSIZE(b.Size)}
	if b.Hero != nil {
		hero, err := convertFlexComponent(*b.Hero)
		if err != nil {
			return nil, err
		}
		out.Hero = hero
	}
	var err error
	if out.Body, err = convertBox(b.Body); err != nil {
		return nil, err
	}
	if out.Footer, err = convertBox(b.Footer); err != nil {
		return nil, err
	}
	return out, nil
}

// convertBox returns nil for a nil box. A nil flex ratio is sent as 0.
func convertBox(b *message.FlexBox) (*messaging_api.FlexBox, error) {
	if b == nil {
		return nil, nil
	}
	contents := make([]messaging_api.FlexComponentInterface, 0, len(b.Contents))
	for _, c := range b.Contents {
		cc, err := convertFlexComponent(c)
		if err != nil {
			return nil, err
		}
		contents = append(contents, cc)
	}
	out := &messaging_api.FlexBox{
		Layout:     messaging_api.FlexBoxLAYOUT(b.Layout),
		Spacing:    b.Spacing,
		PaddingAll: b.PaddingAll,
		Contents:   contents,
	}
	if b.Flex != nil {
		out.Flex = int32(*b.Flex)
	}
	return out, nil
}

func convertFlexComponent(c message.FlexComponent) (messaging_api.FlexComponentInterface, error) {
	switch fc := c.(type) {
	case message.FlexBox:
		return convertBox(&fc)
	case message.FlexText:
		return &messaging_api.FlexText{
			Text:   fc.Text,
			Weight: messaging_api.FlexTextWEIGHT(fc.Weight),
			Size:   fc.Size,
		}, nil
	case message.FlexButton:
		action, err := convertAction(fc.Action)
		if err != nil {
			return nil, err
		}
		return &messaging_api.FlexButton{
			Style:  messaging_api.FlexButtonSTYLE(fc.Style),
			Height: messaging_api.FlexButtonHEIGHT(fc.Height),
			Action: action,
		}, nil
	case message.FlexImage:
		img := &messaging_api.FlexImage{
			Url:         fc.URL,
			Size:        fc.Size,
			AspectRatio: fc.AspectRatio,
			AspectMode:  messaging_api.FlexImageASPECT_MODE(fc.AspectMode),
		}
		if fc.Action != nil {
			action, err := convertAction(fc.Action)
			if err != nil {
				return nil, err
			}
			img.Action = action
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported flex component %T", c)
	}
}
