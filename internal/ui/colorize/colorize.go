// Package colorize applies chroma syntax highlighting to the JSON and
// disassembly output. Highlighting is skipped when NVROM_NO_COLOR is set,
// which the CLI also does whenever output is piped.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

func disabled() bool {
	return os.Getenv("NVROM_NO_COLOR") != ""
}

func getStyle() *chroma.Style {
	candidates := []string{"nvrom-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

func highlight(code string, lexer chroma.Lexer) string {
	if lexer == nil {
		return code
	}
	// Force registration of the custom style.
	_ = NvromDark

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code
	}
	return buf.String()
}

// JSON highlights a JSON document.
func JSON(code string) string {
	if disabled() {
		return code
	}
	return highlight(code, lexers.Get("json"))
}

// Assembly highlights Intel-syntax x86 disassembly. The nasm lexer covers
// real-mode mnemonics and register names.
func Assembly(code string) string {
	if disabled() {
		return code
	}
	lexer := lexers.Get("nasm")
	if lexer == nil {
		lexer = lexers.Get("gas")
	}
	return highlight(code, lexer)
}
