package pipeline

import (
	"github.com/google/uuid"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
)

// cloudNamespace seeds name-based cloud IDs so that the same input always
// yields the same ID.
var cloudNamespace = uuid.MustParse("6f1c2a9e-4b7d-4e0a-9a53-2d8f0c6b1e47")

// layoutInput is what the layout cache key is derived from.
type layoutInput struct {
	Source string        `json:"source"`
	Items  []bubble.Item `json:"items"`
}

// ItemsHash returns the content hash of items as read from source.
func ItemsHash(items []bubble.Item, source string) (string, error) {
	return cache.HashJSON(layoutInput{Source: source, Items: items})
}

// Layout packs items into a cloud. It does no caching; see
// [Runner.LayoutWithCacheInfo].
func Layout(items []bubble.Item, opts Options) (cloud.Cloud, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return cloud.Cloud{}, err
	}
	if err := ValidateItems(items); err != nil {
		return cloud.Cloud{}, err
	}

	bopts := opts.BubbleOptions()
	circles := bubble.Pack(items, bopts)
	c := cloud.FromCircles(circles, bopts)
	c.Source = opts.Source

	if n := bubble.Fallbacks(circles); n > 0 {
		opts.Logger.Warn("some bubbles could not be placed tangent to their neighbours",
			"fallbacks", n, "bubbles", len(circles))
	}
	opts.Logger.Debug("packed bubbles",
		"items", len(items),
		"bubbles", len(circles),
		"width", c.Width,
		"height", c.Height)

	return c, nil
}

// cloudID derives a stable ID from a layout cache key.
func cloudID(layoutKey string) uuid.UUID {
	return uuid.NewSHA1(cloudNamespace, []byte(layoutKey))
}
