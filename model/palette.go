package model

var (
	Off       = RGB(0, 0, 0)
	White     = RGB(255, 255, 255)
	Red       = RGB(255, 0, 0)
	Green     = RGB(0, 255, 0)
	Blue      = RGB(0, 0, 255)
	Purple    = RGB(128, 0, 128)
	Yellow    = RGB(255, 255, 0)
	Orange    = RGB(255, 50, 0)
	Turquoise = RGB(64, 224, 208)
)

var named = []Color{Off, White, Red, Green, Blue, Purple, Yellow, Orange, Turquoise}

// showColors follows the order of the bulbs on the wall in the show.
var showColors = []Color{
	Yellow, Green, Red, Blue, Orange, Turquoise, Green, Yellow, Purple,
	Red, Green, Blue, Yellow, Red, Turquoise, Green, Red, Blue, Green,
	Orange, Yellow, Green, Red, Blue, Orange, Turquoise, Red, Blue,
	Orange, Red, Yellow, Green, Purple, Blue, Yellow, Orange, Turquoise,
	Red, Green, Yellow, Purple, Yellow, Green, Red, Blue, Orange,
	Turquoise, Green, Blue, Orange,
}

// Named returns the nine named colors, Off first.
func Named() []Color {
	return append([]Color(nil), named...)
}

// Visible returns the named colors without Off.
func Visible() []Color {
	return append([]Color(nil), named[1:]...)
}

// ShowColors returns the 50 colors cycled along the strip by the fairy-light fill.
func ShowColors() []Color {
	return append([]Color(nil), showColors...)
}
