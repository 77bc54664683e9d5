package render

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/cache"
	"github.com/debemdeboas/texpad/internal/util"
)

// Test helpers
func setupTest() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	cache.ClearHighlighted()
}

func TestHighlightTeX(t *testing.T) {
	source := "\\section{Intro}\n% comment\n$E = mc^2$\n"

	out, err := HighlightTeX(source, "gruvbox")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Error("Expected ANSI escapes in highlighted output")
	}
	for _, token := range []string{"section", "Intro", "comment"} {
		if !strings.Contains(out, token) {
			t.Errorf("Expected output to keep %q", token)
		}
	}
}

func TestHighlightTeXUnknownTheme(t *testing.T) {
	if _, err := HighlightTeX("\\emph{x}", "no-such-theme"); err != nil {
		t.Errorf("Expected fallback style for unknown theme, got %v", err)
	}
}

func TestHighlightTeXCached(t *testing.T) {
	setupTest()

	source := "\\begin{document}\nHi\n\\end{document}\n"
	first := HighlightTeXCached(source, "gruvbox")

	cached, found := cache.GetHighlighted(util.ContentHashString(source), "gruvbox")
	if !found {
		t.Fatal("Expected highlighted source to be cached")
	}
	if cached != first {
		t.Error("Cached value should match the returned value")
	}

	if _, found := cache.GetHighlighted(util.ContentHashString(source), "monokai"); found {
		t.Error("Expected themes to be cached separately")
	}

	if second := HighlightTeXCached(source, "gruvbox"); second != first {
		t.Error("Expected cache hit to return the same output")
	}
}

func TestHighlightTeXCachedKeepsLatest(t *testing.T) {
	setupTest()

	older := "\\section{Draft one}\n"
	newer := "\\section{Draft two}\n"
	HighlightTeXCached(older, "gruvbox")
	HighlightTeXCached(newer, "gruvbox")

	if _, found := cache.GetHighlighted(util.ContentHashString(older), "gruvbox"); found {
		t.Error("Expected the older source to be evicted")
	}
	if _, found := cache.GetHighlighted(util.ContentHashString(newer), "gruvbox"); !found {
		t.Error("Expected the latest source to be cached")
	}
}

func TestCacheConcurrency(t *testing.T) {
	setupTest()

	const numGoroutines = 50
	source := "\\section{Concurrent}\n"

	var wg sync.WaitGroup
	results := make(chan string, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- HighlightTeXCached(source, "github")
		}()
	}
	wg.Wait()
	close(results)

	var first string
	for r := range results {
		if first == "" {
			first = r
		} else if r != first {
			t.Error("Expected identical results from concurrent callers")
		}
	}
}
