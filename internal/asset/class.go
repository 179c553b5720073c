package asset

import "github.com/specialistvlad/assetgrid/internal/config"

// Class is a category of source file.
type Class string

const (
	Script Class = "script"
	Style  Class = "style"
	Markup Class = "markup"
	Data   Class = "data"
	Server Class = "server"
	Image  Class = "image"
)

// Classes lists every class in the fixed order classification runs in.
var Classes = []Class{Markup, Script, Style, Data, Server, Image}

// patterns holds the ordered glob groups of each class, relative to the
// bundle directory.
var patterns = map[Class][]string{
	Script: {
		"Resources/public/js/libs/**/*.js",
		"Resources/public/js/custom/**/*.js",
		"Resources/public/js/**/*.js",
	},
	Style: {
		"Resources/public/css/libs/**/*.css",
		"Resources/public/css/custom/**/*.css",
		"Resources/public/css/**/*.css",
	},
	Markup: {
		"**/*.html.twig",
	},
	Data: {
		"**/*.yml",
	},
	Server: {
		"**/*.php",
	},
	Image: {
		"**/*.png",
		"**/*.gif",
		"**/*.jpg",
		"**/*.jpeg",
		"**/*.tiff",
		"**/*.bmp",
		"**/*.webp",
	},
}

// Patterns returns a copy of the ordered glob groups of class c.
func Patterns(c Class) []string {
	return append([]string(nil), patterns[c]...)
}

// Enabled reports whether class c is switched on by flags.
func Enabled(c Class, flags config.GlobFlags) bool {
	switch c {
	case Script:
		return flags.JS
	case Style:
		return flags.CSS
	case Markup:
		return flags.Twig
	case Data:
		return flags.YAML
	case Server:
		return flags.PHP
	case Image:
		return flags.Images
	default:
		return false
	}
}

// EnabledClasses returns the enabled classes in classification order.
func EnabledClasses(flags config.GlobFlags) []Class {
	var out []Class
	for _, c := range Classes {
		if Enabled(c, flags) {
			out = append(out, c)
		}
	}
	return out
}
