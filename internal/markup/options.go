package markup

// Default option values.
const (
	DefaultFenceLanguage = "python"
)

// Options tune the behavior of markup actions.
type Options struct {
	// FenceLanguage is the language tag written after an opening code fence.
	FenceLanguage string

	// ImageExtensions are suffixes that make selected text seed the image URL
	// instead of the image title.
	ImageExtensions []string

	// LinkPrefixes are prefixes that make selected text seed the link URL
	// instead of the link title.
	LinkPrefixes []string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		FenceLanguage:   DefaultFenceLanguage,
		ImageExtensions: []string{".png", ".gif", ".jpg"},
		LinkPrefixes:    []string{"http", "www"},
	}
}

// withDefaults fills an empty fence language and nil lists from
// DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FenceLanguage == "" {
		o.FenceLanguage = d.FenceLanguage
	}
	if o.ImageExtensions == nil {
		o.ImageExtensions = d.ImageExtensions
	}
	if o.LinkPrefixes == nil {
		o.LinkPrefixes = d.LinkPrefixes
	}
	return o
}
