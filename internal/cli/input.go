package cli

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/httputil"
	"github.com/matzehuels/wordbubbles/pkg/report"
)

// stdinPath is the input argument that reads from standard input.
const stdinPath = "-"

// readItems loads bubble items from a report payload or bare frequency
// object. The input is a file path, an http(s) URL fetched through store,
// or "-" for stdin.
func (c *CLI) readItems(cmd *cobra.Command, store cache.Cache, input, source string) ([]bubble.Item, error) {
	switch {
	case input == stdinPath:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return report.DecodeItems(data, source)
	case httputil.IsURL(input):
		data, err := httputil.NewFetcher(store, c.Logger).Get(cmd.Context(), input)
		if err != nil {
			return nil, err
		}
		return report.DecodeItems(data, source)
	}
	if err := errors.ValidatePath(input); err != nil {
		return nil, err
	}
	return report.ReadItems(input, source)
}

// urlBase derives a local output name from the last segment of a URL path.
func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "cloud"
	}
	name := path.Base(u.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return "cloud"
	}
	return name
}
