package plan

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/assetgrid/internal/outpath"
	"github.com/specialistvlad/assetgrid/internal/version"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Placeholders substituted in markup templates by rewrite-markup-references.
const (
	StylePlaceholder  = "<symfony-grunt-css>"
	ScriptPlaceholder = "<symfony-grunt-js>"
)

// DefaultLiveReloadScript is the tag appended to the script replacement in
// developer mode.
const DefaultLiveReloadScript = `<script src="//localhost:35729/livereload.js"></script>`

// Option keys understood by executors.
const (
	OptionCommand   = "command"
	OptionCwd       = "cwd"
	OptionFilter    = "filter"
	OptionFlatten   = "flatten"
	OptionLinter    = "linter"
	OptionOptimizer = "optimizers"
	OptionPrefix    = "prefix"
	OptionUglify    = "uglify"
	OptionVariables = "variables"
)

// markupVariables returns the placeholder replacements for one bundle.
func markupVariables(title string, v version.Token, dev bool, liveReload string) map[string]string {
	css := fmt.Sprintf(`<link rel="stylesheet" type="text/css" href="%s">`, outpath.StyleURL(title, v))
	js := fmt.Sprintf(`<script src="%s"></script>`, outpath.ScriptURL(title, v))
	if dev {
		js += liveReload
	}
	return map[string]string{
		StylePlaceholder:  css,
		ScriptPlaceholder: js,
	}
}

// imageOptimizers lists the optimizers compress-image steps enable.
func imageOptimizers() map[string]bool {
	return map[string]bool{
		"pngquant":       true,
		"optipng":        false,
		"zopflipng":      true,
		"jpegRecompress": false,
		"jpegoptim":      true,
		"mozjpeg":        true,
		"gifsicle":       true,
		"svgo":           true,
	}
}

// uglifyOptions serializes the minifier options verbatim. A null value
// yields nil and the option is left out.
func uglifyOptions(v cty.Value) (json.RawMessage, error) {
	if v.IsNull() {
		return nil, nil
	}
	data, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode uglify options: %w", err)
	}
	return json.RawMessage(data), nil
}

// entitiesCommand returns the entity generation command for a bundle
// namespace. Framework versions from 3 on moved the console to bin/.
func entitiesCommand(frameworkMajor int, namespace string) string {
	console := "app/console"
	if frameworkMajor >= 3 {
		console = "bin/console"
	}
	return fmt.Sprintf("php %s doctrine:generate:entities %s", console, namespace)
}
