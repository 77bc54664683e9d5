// Package render highlights document source for the terminal.
package render

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/cache"
	"github.com/debemdeboas/texpad/internal/util"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// HighlightTeX colors LaTeX source with ANSI 256-color escapes. On failure it returns the
// source unchanged along with the error.
func HighlightTeX(source, syntaxTheme string) (string, error) {
	lexer := lexers.Get("tex")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(syntaxTheme)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source, err
	}
	return buf.String(), nil
}

// Mutex to protect the check-render-set operation in HighlightTeXCached
var renderCacheMutex sync.Mutex

// HighlightTeXCached is HighlightTeX memoized by content hash and theme. It remembers one
// rendering at a time.
func HighlightTeXCached(source, syntaxTheme string) string {
	contentHash := util.ContentHashString(source)

	if cached, found := cache.GetHighlighted(contentHash, syntaxTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("syntaxTheme", syntaxTheme).Msg("Cache hit for highlighted source")
		return cached
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetHighlighted(contentHash, syntaxTheme); found {
		return cached
	}

	highlighted, err := HighlightTeX(source, syntaxTheme)
	if err != nil {
		renderLogger.Warn().Err(err).Msg("Highlighting failed, showing plain source")
		return source
	}
	// Only the latest source is kept; older versions of the document are not shown again.
	cache.ClearHighlighted()
	cache.SetHighlighted(contentHash, syntaxTheme, highlighted)
	return highlighted
}

// WarmCache highlights source in the background so the next view is a cache hit.
func WarmCache(source, syntaxTheme string) {
	go HighlightTeXCached(source, syntaxTheme)
}
