package message

// Template is the body of a TemplateReply.
type Template interface {
	isTemplate()
}

// ButtonsTemplate shows an optional thumbnail, a title, a text and up to
// four actions.
type ButtonsTemplate struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	Actions           []Action
}

// ConfirmTemplate shows a text with exactly two actions.
type ConfirmTemplate struct {
	Text    string
	Actions []Action
}

// CarouselTemplate shows horizontally scrollable columns.
type CarouselTemplate struct {
	Columns []CarouselColumn
}

// CarouselColumn is one column of a CarouselTemplate.
type CarouselColumn struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	Actions           []Action
}

// ImageCarouselTemplate shows horizontally scrollable images, each with one
// action.
type ImageCarouselTemplate struct {
	Columns []ImageCarouselColumn
}

// ImageCarouselColumn is one column of an ImageCarouselTemplate.
type ImageCarouselColumn struct {
	ImageURL string
	Action   Action
}

func (ButtonsTemplate) isTemplate()       {}
func (ConfirmTemplate) isTemplate()       {}
func (CarouselTemplate) isTemplate()      {}
func (ImageCarouselTemplate) isTemplate() {}
