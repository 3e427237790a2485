package styles

const (
	StyleSimple    = "simple"
	StyleHanddrawn = "handdrawn"
)

// ValidStyles lists the style names accepted in options.
var ValidStyles = map[string]bool{
	StyleSimple:    true,
	StyleHanddrawn: true,
}
