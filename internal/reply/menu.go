package reply

import (
	"github.com/flemzord/linekit/internal/catalog"
	"github.com/flemzord/linekit/pkg/message"
)

const (
	heroAspectRatio = "20:13"
	heroSize        = "full"
	titleSize       = "xl"
	spacingSmall    = "sm"
	cardPadding     = "13px"
)

// SingleCatalogMenu returns a one-bubble flex menu listing every option of
// the menu catalog as a link button that sends the option value.
func (b *Builder) SingleCatalogMenu() message.Reply {
	menu := b.catalog.Menu()
	opts := b.catalog.InCatalog(menu.Catalog)

	buttons := make([]message.FlexComponent, 0, len(opts))
	for _, o := range opts {
		buttons = append(buttons, message.FlexButton{
			Style:  message.ButtonLink,
			Height: message.HeightSmall,
			Action: optionAction(o),
		})
	}

	var hero *message.FlexImage
	if menu.HeroImage != "" {
		hero = heroImage(menu.HeroImage)
		if menu.HeroLink != "" {
			hero.Action = message.URIAction{URI: menu.HeroLink}
		}
	}

	noFlex := 0
	return message.FlexReply{
		AltText: FlexAltText,
		Contents: message.FlexCarousel{
			Bubbles: []message.FlexBubble{{
				Hero: hero,
				Body: &message.FlexBox{
					Layout: message.LayoutVertical,
					Contents: []message.FlexComponent{
						message.FlexText{Text: menu.Title, Weight: message.WeightBold, Size: titleSize},
					},
				},
				Footer: &message.FlexBox{
					Layout:   message.LayoutVertical,
					Spacing:  spacingSmall,
					Flex:     &noFlex,
					Contents: buttons,
				},
			}},
		},
	}
}

// MultiGroupMenu returns a carousel of exactly catalog.CardCount bubbles, one
// per configured card, each listing the options of that card's group.
func (b *Builder) MultiGroupMenu() message.Reply {
	cards := b.catalog.Menu().Cards
	bubbles := make([]message.FlexBubble, 0, len(cards))
	for _, card := range cards {
		opts := b.catalog.InGroup(card.Group)
		buttons := make([]message.FlexComponent, 0, len(opts))
		for _, o := range opts {
			buttons = append(buttons, message.FlexButton{Action: optionAction(o)})
		}
		bubbles = append(bubbles, message.FlexBubble{
			Size: card.Size,
			Hero: heroImage(card.Image),
			Body: &message.FlexBox{
				Layout:     message.LayoutVertical,
				Spacing:    spacingSmall,
				PaddingAll: cardPadding,
				Contents:   buttons,
			},
		})
	}
	return message.FlexReply{
		AltText:  FlexAltText,
		Contents: message.FlexCarousel{Bubbles: bubbles},
	}
}

func optionAction(o catalog.Option) message.Action {
	return message.MessageAction{Label: o.Name, Text: o.Value}
}

func heroImage(url string) *message.FlexImage {
	return &message.FlexImage{
		URL:         url,
		Size:        heroSize,
		AspectRatio: heroAspectRatio,
		AspectMode:  message.AspectCover,
	}
}
