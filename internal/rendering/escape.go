package rendering

import "strings"

// pdfReplacer maps characters the core PDF fonts cannot encode onto close
// cp1252 equivalents. Characters cp1252 already covers (curly quotes, en and
// em dashes, euro, bullet) are left for the font translator.
var pdfReplacer = strings.NewReplacer(
	"→", "->",
	"←", "<-",
	"≤", "<=",
	"≥", ">=",
	"≈", "~",
	"\u2212", "-", // minus sign
	"\u2011", "-", // non-breaking hyphen
	"\u2010", "-", // hyphen
	"\u00a0", " ",
	"\u2009", " ",
	"\u202f", " ",
	"\u200b", "",
	"\ufeff", "",
)

// EscapePDFText prepares one line of model output for a core-font PDF:
// markdown emphasis markers are removed, list markers become bullets and
// unsupported punctuation is replaced.
func EscapePDFText(line string) string {
	if line == "" {
		return ""
	}

	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")

	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	switch {
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		line = indent + "• " + trimmed[2:]
	case strings.HasPrefix(trimmed, "#"):
		line = indent + strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	}

	return pdfReplacer.Replace(line)
}
