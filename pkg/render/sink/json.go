package sink

import (
	"github.com/matzehuels/wordbubbles/pkg/cloud"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*cloud.Cloud)

// WithJSONStyle records the style name so the cloud can be re-rendered
// identically.
func WithJSONStyle(s string) JSONOption { return func(c *cloud.Cloud) { c.Style = s } }

// WithJSONSeed records the hand-drawn seed.
func WithJSONSeed(seed uint64) JSONOption { return func(c *cloud.Cloud) { c.Seed = seed } }

// WithJSONSource records which frequency table the items came from.
func WithJSONSource(s string) JSONOption { return func(c *cloud.Cloud) { c.Source = s } }

// RenderJSON exports the cloud in the format [cloud.Unmarshal] reads.
func RenderJSON(c cloud.Cloud, opts ...JSONOption) ([]byte, error) {
	for _, opt := range opts {
		opt(&c)
	}
	return cloud.Marshal(c)
}
