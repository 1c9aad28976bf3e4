package reply

import "github.com/flemzord/linekit/pkg/message"

// Postback data sent back by the date/time pickers.
const (
	PostbackDate     = "DATE"
	PostbackTime     = "TIME"
	PostbackDatetime = "DATETIME"
)

const (
	lineURL       = "https://line.me"
	helloPostback = "hello こんにちは"
	riceMessage   = "Rice=米"
)

func (b *Builder) buttonsImageURL() string {
	return b.URL("/static/buttons/1040.jpg")
}

// Buttons returns the buttons template demo.
func (b *Builder) Buttons() message.Reply {
	return message.TemplateReply{
		AltText: "Buttons alt text",
		Template: message.ButtonsTemplate{
			ThumbnailImageURL: b.buttonsImageURL(),
			Title:             "My button sample",
			Text:              "Hello, my button",
			Actions: []message.Action{
				message.URIAction{Label: "Go to line.me", URI: lineURL},
				message.PostbackAction{Label: "Say hello1", Data: helloPostback},
				message.PostbackAction{Label: "言 hello2", Data: helloPostback, Text: helloPostback},
				message.MessageAction{Label: "Say message", Text: riceMessage},
			},
		},
	}
}

// Confirm returns the confirm template demo.
func (b *Builder) Confirm() message.Reply {
	return message.TemplateReply{
		AltText: "Confirm alt text",
		Template: message.ConfirmTemplate{
			Text: "Do it?",
			Actions: []message.Action{
				message.MessageAction{Label: "Yes", Text: "Yes!"},
				message.MessageAction{Label: "No", Text: "No!"},
			},
		},
	}
}

// Carousel returns the carousel template demo: two columns sharing the
// buttons thumbnail.
func (b *Builder) Carousel() message.Reply {
	thumb := b.buttonsImageURL()
	return message.TemplateReply{
		AltText: "Carousel alt text",
		Template: message.CarouselTemplate{
			Columns: []message.CarouselColumn{
				{
					ThumbnailImageURL: thumb,
					Title:             "hoge",
					Text:              "fuga",
					Actions: []message.Action{
						message.URIAction{Label: "Go to line.me", URI: lineURL},
						message.PostbackAction{Label: "Say hello1", Data: helloPostback},
					},
				},
				{
					ThumbnailImageURL: thumb,
					Title:             "hoge",
					Text:              "fuga",
					Actions: []message.Action{
						message.PostbackAction{Label: "言 hello2", Data: helloPostback, Text: helloPostback},
						message.MessageAction{Label: "Say message", Text: riceMessage},
					},
				},
			},
		},
	}
}

// ImageCarousel returns the image carousel template demo.
func (b *Builder) ImageCarousel() message.Reply {
	img := b.buttonsImageURL()
	return message.TemplateReply{
		AltText: "Image carousel alt text",
		Template: message.ImageCarouselTemplate{
			Columns: []message.ImageCarouselColumn{
				{ImageURL: img, Action: message.URIAction{Label: "Go to LINE", URI: lineURL}},
				{ImageURL: img, Action: message.PostbackAction{Label: "Say hello1", Data: helloPostback}},
				{ImageURL: img, Action: message.MessageAction{Label: "Say message", Text: riceMessage}},
				{ImageURL: img, Action: message.DatetimePickerAction{Label: "datetime", Data: PostbackDatetime, Mode: message.PickDatetime}},
			},
		},
	}
}

// Datetime returns a buttons template with one picker per mode.
func (b *Builder) Datetime() message.Reply {
	return message.TemplateReply{
		AltText: "Datetime pickers alt text",
		Template: message.ButtonsTemplate{
			Text: "Select date / time !",
			Actions: []message.Action{
				message.DatetimePickerAction{Label: "date", Data: PostbackDate, Mode: message.PickDate},
				message.DatetimePickerAction{Label: "time", Data: PostbackTime, Mode: message.PickTime},
				message.DatetimePickerAction{Label: "datetime", Data: PostbackDatetime, Mode: message.PickDatetime},
			},
		},
	}
}

// Imagemap returns the imagemap demo: four quadrants over a 1040x1040 base
// with an embedded video.
func (b *Builder) Imagemap() message.Reply {
	const half = 520
	quad := func(x, y int) message.Area {
		return message.Area{X: x, Y: y, Width: half, Height: half}
	}
	return message.ImagemapReply{
		BaseURL:  b.URL("/static/rich"),
		AltText:  "Imagemap alt text",
		BaseSize: message.Size{Width: 1040, Height: 1040},
		Actions: []message.ImagemapAction{
			message.ImagemapURIAction{Area: quad(0, 0), LinkURI: "https://store.line.me/family/manga/en"},
			message.ImagemapURIAction{Area: quad(half, 0), LinkURI: "https://store.line.me/family/music/en"},
			message.ImagemapURIAction{Area: quad(0, half), LinkURI: "https://store.line.me/family/play/en"},
			message.ImagemapMessageAction{Area: quad(half, half), Text: "URANAI!"},
		},
		Video: &message.ImagemapVideo{
			OriginalContentURL: b.URL("/static/imagemap/video.mp4"),
			PreviewImageURL:    b.URL("/static/imagemap/preview.jpg"),
			Area:               message.Area{X: 280, Y: 385, Width: 480, Height: 270},
			ExternalLink:       &message.ExternalLink{LinkURI: lineURL, Label: "LINE"},
		},
	}
}
