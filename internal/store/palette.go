package store

// Color keys and the hex value each one renders as.
var Palette = map[string]string{
	"blue":   "#3b82f6",
	"pink":   "#ec4899",
	"green":  "#10b981",
	"yellow": "#f59e0b",
	"purple": "#8b5cf6",
	"orange": "#f97316",
}

// ColorKeys lists Palette in display order.
var ColorKeys = []string{"blue", "pink", "green", "yellow", "purple", "orange"}

// Icon keys and the glyph each one renders as.
var Icons = map[string]string{
	"palette":   "🎨",
	"megaphone": "📣",
	"code":      "💻",
	"shield":    "🛡",
	"file":      "📄",
	"rocket":    "🚀",
	"users":     "👥",
	"settings":  "⚙",
	"calendar":  "📅",
	"dashboard": "📊",
	"folder":    "📁",
	"check":     "✅",
}

var IconKeys = []string{
	"palette", "megaphone", "code", "shield", "file", "rocket",
	"users", "settings", "calendar", "dashboard", "folder", "check",
}

const (
	DefaultColor = "blue"
	DefaultIcon  = "folder"
)

// ColorHex resolves a color key, falling back to the default color.
func ColorHex(key string) string {
	if hex, ok := Palette[key]; ok {
		return hex
	}
	return Palette[DefaultColor]
}

func IconGlyph(key string) string {
	if g, ok := Icons[key]; ok {
		return g
	}
	return Icons[DefaultIcon]
}
