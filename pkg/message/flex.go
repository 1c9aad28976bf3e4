package message

// FlexContainer is the root of a flex layout.
type FlexContainer interface {
	isFlexContainer()
}

// FlexComponent is a node inside a flex box.
type FlexComponent interface {
	isFlexComponent()
}

// FlexCarousel is a horizontally scrollable row of bubbles.
type FlexCarousel struct {
	Bubbles []FlexBubble
}

// FlexBubble is one card. Size is "" (platform default), "kilo", "mega"...
type FlexBubble struct {
	Size   string
	Hero   *FlexImage
	Body   *FlexBox
	Footer *FlexBox
}

// FlexBox lays out its contents vertically or horizontally.
type FlexBox struct {
	Layout     string
	Spacing    string
	PaddingAll string
	// Flex is the box's flex ratio; nil is sent as 0.
	Flex     *int
	Contents []FlexComponent
}

// FlexText is a text component.
type FlexText struct {
	Text   string
	Weight string
	Size   string
}

// FlexButton is a button component.
type FlexButton struct {
	Style  string
	Height string
	Action Action
}

// FlexImage is an image component. Action, when set, makes it tappable.
type FlexImage struct {
	URL         string
	Size        string
	AspectRatio string
	AspectMode  string
	Action      Action
}

// Flex layout values used by this bot.
const (
	LayoutVertical = "vertical"
	ButtonLink     = "link"
	HeightSmall    = "sm"
	AspectCover    = "cover"
	WeightBold     = "bold"
	BubbleMega     = "mega"
)

func (FlexCarousel) isFlexContainer() {}
func (FlexBubble) isFlexContainer()   {}

func (FlexBox) isFlexComponent()    {}
func (FlexText) isFlexComponent()   {}
func (FlexButton) isFlexComponent() {}
func (FlexImage) isFlexComponent()  {}
