package uast

import (
	"path"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
	"github.com/src-d/enry/v2"
)

// Grammar names.
const (
	LangTSX        = "tsx"
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
)

// languageFuncs maps language names to their tree-sitter GetLanguage functions.
var languageFuncs = map[string]func() unsafe.Pointer{
	LangJavaScript: javascript.GetLanguage,
	LangTSX:        tsx.GetLanguage,
	LangTypeScript: typescript.GetLanguage,
}

// extensionLanguages routes file extensions to grammars. JSX goes through the
// TSX grammar, which is a superset of the JavaScript one for markup.
var extensionLanguages = map[string]string{
	".tsx": LangTSX,
	".jsx": LangTSX,
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
}

// enryLanguages maps enry language names to grammars for files whose
// extension is not in extensionLanguages.
var enryLanguages = map[string]string{
	"TSX":        LangTSX,
	"TypeScript": LangTypeScript,
	"JavaScript": LangJavaScript,
}

var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given name, or nil if not supported.
func GetLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// DetectLanguage returns the grammar name for filename, consulting content
// through enry when the extension is unknown. It returns "" when the file is
// not JavaScript or TypeScript.
func DetectLanguage(filename string, content []byte) string {
	ext := strings.ToLower(path.Ext(filename))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}

	detected := enry.GetLanguage(path.Base(filename), content)

	return enryLanguages[detected]
}

// SupportedExtensions returns the extensions routed to a grammar.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}

	return exts
}
