package cache

// LayoutKeyOpts are the options that change a packed layout.
type LayoutKeyOpts struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxItems  int     `json:"max_items"`
	MinRadius float64 `json:"min_radius"`
	MaxRadius float64 `json:"max_radius"`
	Padding   float64 `json:"padding"`
	AngleStep float64 `json:"angle_step"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style"`
	Seed        uint64  `json:"seed,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	ShowWeights bool    `json:"show_weights,omitempty"`
	Reveal      bool    `json:"reveal,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey is the key for the cloud computed from items hashing to
	// itemsHash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	// ArtifactKey is the key for one rendered format of the cloud hashing
	// to layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
