package format

import "github.com/joshuapare/psdkit/pkg/types"

var blendLabels = map[string]string{
	"pass": "pass through",
	"norm": "normal",
	"diss": "dissolve",
	"dark": "darken",
	"mul ": "multiply",
	"idiv": "color burn",
	"lbrn": "linear burn",
	"dkCl": "darker color",
	"lite": "lighten",
	"scrn": "screen",
	"div ": "color dodge",
	"lddg": "linear dodge",
	"lgCl": "lighter color",
	"over": "overlay",
	"sLit": "soft light",
	"hLit": "hard light",
	"vLit": "vivid light",
	"lLit": "linear light",
	"pLit": "pin light",
	"hMix": "hard mix",
	"diff": "difference",
	"smud": "exclusion",
	"fsub": "subtract",
	"fdiv": "divide",
	"hue ": "hue",
	"sat ": "saturation",
	"colr": "color",
	"lum ": "luminosity",
}

// BlendModeFor maps a four-character blend key to its label. Unknown keys
// label themselves.
func BlendModeFor(code string) types.BlendMode {
	if label, ok := blendLabels[code]; ok {
		return types.BlendMode{Code: code, Label: label}
	}
	return types.BlendMode{Code: code, Label: code}
}
