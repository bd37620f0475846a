package editor

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/pkg/document"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// DefaultTitle is the title given to a document bootstrapped from an empty
// snapshot.
const DefaultTitle = "Untitled"

// ImageFetcher loads image attachments asynchronously. completion may run on
// any goroutine.
type ImageFetcher interface {
	FetchImage(id, url string, size imagecache.Size, scale float64, completion func(imagecache.Image, error))
}

// Option configures a Controller.
type Option func(*Controller)

// WithParser sets the block parser. The default is GitHub Flavored Markdown.
func WithParser(parser document.Parser) Option {
	return func(c *Controller) {
		c.parser = parser
	}
}

// WithTransport sets the collaboration transport.
func WithTransport(transport Transport) Option {
	return func(c *Controller) {
		c.transport = transport
	}
}

// WithImageFetcher sets the image loader and the size images are fitted to.
func WithImageFetcher(fetcher ImageFetcher, size imagecache.Size, scale float64) Option {
	return func(c *Controller) {
		c.images = fetcher
		c.imageSize = size
		c.imageScale = scale
	}
}

// WithTheme sets the style theme.
func WithTheme(theme style.Theme) Option {
	return func(c *Controller) {
		c.theme = theme
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithDebug makes StateErrors panic instead of being logged and returned.
func WithDebug(debug bool) Option {
	return func(c *Controller) {
		c.debug = debug
	}
}

// WithUnit sets the offset unit used on the wire.
func WithUnit(unit ot.Unit) Option {
	return func(c *Controller) {
		c.unit = unit
	}
}

// WithDefaultTitle sets the title used when bootstrapping an empty document.
func WithDefaultTitle(title string) Option {
	return func(c *Controller) {
		c.defaultTitle = title
	}
}
