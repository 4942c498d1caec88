package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// NvromDark is the highlight style shared by the JSON and disassembly
// output. Registered under "nvrom-dark" on package initialization.
var NvromDark = styles.Register(chroma.MustNewStyle("nvrom-dark", chroma.StyleEntries{
	chroma.Text:       "#FFFFFF",
	chroma.Background: "bg:#1e1e1e",
	chroma.Comment:    "#7C9C9D",

	// JSON object keys come through as name tags.
	chroma.Name:         "#9CDCFE",
	chroma.NameTag:      "#9CDCFE",
	chroma.NameBuiltin:  "#7C9C9D",
	chroma.NameVariable: "#7C9C9D",

	// Mnemonics tokenize as keywords under the nasm lexer.
	chroma.Keyword:       "#FFFFFF",
	chroma.KeywordPseudo: "#FFFFFF",

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#FF5F87",
	chroma.LiteralNumberBin:     "#FF5F87",
	chroma.LiteralNumberOct:     "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",
	chroma.LiteralNumberFloat:   "#FF5F87",

	chroma.NameLabel: "#FFD700",

	chroma.KeywordConstant: "#569CD6", // true/false/null

	chroma.Operator:    "#FFFFFF",
	chroma.Punctuation: "#FFFFFF",

	chroma.String: "#EACD53",
}))
