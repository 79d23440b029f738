package configexpand

import (
	"strings"

	"github.com/go-dconfig/dconfig/confignode"
)

// NodeExpanderOptions configures the Node Expander's token grammar
// (spec §6). Prefix is the word following '%'; it defaults to "node" when
// empty. Level, when non-zero, enables the explicit current/up marker
// syntax; when zero, the current marker is disabled entirely and the up
// marker degenerates to a bare repeated Separator (spec §6: "when absent,
// <cur> is disabled and <up> is just the Separator repeated").
type NodeExpanderOptions struct {
	Prefix string
	Level  byte
}

func (o NodeExpanderOptions) prefixWord() string {
	if o.Prefix == "" {
		return "node"
	}

	return o.Prefix
}

// matchNodeToken reports whether value, once trimmed of surrounding ASCII
// blanks and line breaks, is *entirely* a node-graft token (spec §4.5:
// partial interpolation is not supported at node level). On success it
// returns the referenced path and how many current/up markers preceded it.
func matchNodeToken(value string, opts NodeExpanderOptions, sep confignode.Separator) (path string, current, up int, ok bool) {
	trimmed := strings.Trim(value, " \t\r\n")

	if len(trimmed) < 2 || trimmed[0] != '%' || trimmed[len(trimmed)-1] != '%' {
		return "", 0, 0, false
	}

	inner := trimmed[1 : len(trimmed)-1]

	prefix := opts.prefixWord() + sep.String()
	if !strings.HasPrefix(inner, prefix) {
		return "", 0, 0, false
	}

	rest := inner[len(prefix):]

	if opts.Level != 0 {
		currentUnit := string(opts.Level) + sep.String()
		for strings.HasPrefix(rest, currentUnit) {
			current++
			rest = rest[len(currentUnit):]
		}

		upUnit := string(opts.Level) + string(opts.Level) + sep.String()
		for strings.HasPrefix(rest, upUnit) {
			up++
			rest = rest[len(upUnit):]
		}
	} else {
		upUnit := sep.String()
		for strings.HasPrefix(rest, upUnit) {
			up++
			rest = rest[len(upUnit):]
		}
	}

	if rest == "" {
		return "", 0, 0, false
	}

	return rest, current, up, true
}
