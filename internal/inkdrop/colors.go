package inkdrop

// Color is one of the fixed label colors the Inkdrop server accepts.
type Color string

const (
	ColorDefault Color = "default"
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorOlive   Color = "olive"
	ColorGreen   Color = "green"
	ColorTeal    Color = "teal"
	ColorBlue    Color = "blue"
	ColorViolet  Color = "violet"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorBrown   Color = "brown"
	ColorGrey    Color = "grey"
	ColorBlack   Color = "black"
)

// colorTints maps each color to a display tint. ColorDefault has no tint.
var colorTints = map[Color]string{
	ColorDefault: "",
	ColorRed:     "#FF3B30",
	ColorOrange:  "#FF9500",
	ColorYellow:  "#FFCC00",
	ColorOlive:   "#C2BD3D",
	ColorGreen:   "#34C759",
	ColorTeal:    "#008080",
	ColorBlue:    "#007AFF",
	ColorViolet:  "#5A4498",
	ColorPurple:  "#AF52DE",
	ColorPink:    "#FF69B4",
	ColorBrown:   "#A2845E",
	ColorGrey:    "#808080",
	ColorBlack:   "#282828",
}

// Valid reports whether c is one of the fixed colors.
func (c Color) Valid() bool {
	_, ok := colorTints[c]
	return ok
}

// Tint returns the display tint hex for c, or empty string for the default
// color and unknown values.
func (c Color) Tint() string {
	return colorTints[c]
}
