package atlas

import (
	"fmt"
	"image"
	"image/color"
)

// AssetID identifies a sprite on the UI sheet.
type AssetID int

const (
	WhitePill AssetID = iota
	BlackPill
	DarkGrayPill
	Option
	Button
	PageBG
	StateBG
	Page
	Bar
	BarBG
	BarBGMenu
	Underline
	Dot
	Brightness
	VolumeMute
	Volume
	Battery
	BatteryLow
	BatteryFill
	BatteryFillLow
	BatteryBolt
	ScrollUp
	ScrollDown
	Wifi
	Hole

	AssetCount
)

var assetNames = [AssetCount]string{
	"white-pill", "black-pill", "dark-gray-pill", "option", "button",
	"page-bg", "state-bg", "page", "bar", "bar-bg", "bar-bg-menu",
	"underline", "dot", "brightness", "volume-mute", "volume", "battery",
	"battery-low", "battery-fill", "battery-fill-low", "battery-bolt",
	"scroll-up", "scroll-down", "wifi", "hole",
}

func (id AssetID) String() string {
	if id < 0 || id >= AssetCount {
		return fmt.Sprintf("AssetID(%d)", int(id))
	}
	return assetNames[id]
}

// baseRects are sprite positions on the @1x sheet. Higher tiers multiply
// every coordinate by the tier.
var baseRects = [AssetCount]image.Rectangle{
	WhitePill:      rect(1, 1, 30, 30),
	BlackPill:      rect(33, 1, 30, 30),
	DarkGrayPill:   rect(65, 1, 30, 30),
	Option:         rect(97, 1, 20, 20),
	Button:         rect(1, 33, 20, 20),
	PageBG:         rect(64, 33, 15, 15),
	StateBG:        rect(23, 54, 8, 8),
	Page:           rect(39, 54, 6, 6),
	Bar:            rect(33, 58, 4, 4),
	BarBG:          rect(15, 55, 4, 4),
	BarBGMenu:      rect(85, 56, 4, 4),
	Underline:      rect(85, 51, 3, 3),
	Dot:            rect(33, 54, 2, 2),
	Brightness:     rect(23, 33, 19, 19),
	VolumeMute:     rect(44, 33, 10, 16),
	Volume:         rect(44, 33, 18, 16),
	Battery:        rect(47, 51, 17, 10),
	BatteryLow:     rect(66, 51, 17, 10),
	BatteryFill:    rect(81, 33, 12, 6),
	BatteryFillLow: rect(1, 55, 12, 6),
	BatteryBolt:    rect(81, 41, 12, 6),
	ScrollUp:       rect(97, 23, 24, 6),
	ScrollDown:     rect(97, 31, 24, 6),
	Wifi:           rect(95, 39, 14, 10),
	Hole:           rect(1, 63, 20, 20),
}

func rect(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

// BaseRect returns the sprite rectangle at the given tier.
func BaseRect(id AssetID, tier int) image.Rectangle {
	r := baseRects[id]
	return image.Rect(r.Min.X*tier, r.Min.Y*tier, r.Max.X*tier, r.Max.Y*tier)
}

// Class groups assets by how they are sized when the sheet is rescaled.
type Class int

const (
	// ClassPlain assets scale proportionally.
	ClassPlain Class = iota
	// ClassPill assets are pill end caps and must be exactly one pill
	// high and wide.
	ClassPill
	// ClassButton assets must be exactly one button in size.
	ClassButton
	// ClassCenteredIcon assets scale proportionally, then grow by a
	// pixel where needed so they center in a pill without half pixels.
	ClassCenteredIcon
)

// ClassOf returns the sizing class of an asset.
func ClassOf(id AssetID) Class {
	switch id {
	case WhitePill, BlackPill, DarkGrayPill:
		return ClassPill
	case Button, Hole, Option:
		return ClassButton
	case Brightness, VolumeMute, Volume, Wifi:
		return ClassCenteredIcon
	}
	return ClassPlain
}

// Palette colors used as solid fills next to sprites.
var (
	ColorWhite     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	ColorBlack     = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	ColorLightGray = color.NRGBA{R: 0x7F, G: 0x7F, B: 0x7F, A: 0xFF}
	ColorGray      = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xFF}
	ColorDarkGray  = color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xFF}
)

var fillColors = map[AssetID]color.NRGBA{
	WhitePill:    ColorWhite,
	BlackPill:    ColorBlack,
	DarkGrayPill: ColorDarkGray,
	Option:       ColorDarkGray,
	Button:       ColorWhite,
	PageBG:       ColorWhite,
	StateBG:      ColorWhite,
	Page:         ColorBlack,
	Bar:          ColorWhite,
	BarBG:        ColorBlack,
	BarBGMenu:    ColorDarkGray,
	Underline:    ColorGray,
	Dot:          ColorLightGray,
	Hole:         ColorBlack,
}

// FillColor returns the solid color that extends an asset, if it has one.
func FillColor(id AssetID) (color.NRGBA, bool) {
	c, ok := fillColors[id]
	return c, ok
}
