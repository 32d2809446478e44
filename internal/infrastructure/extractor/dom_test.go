package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"onconews/internal/scrape"
)

func newTestDOMStrategy(t *testing.T, html string) (*DOMStrategy, string) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(server.Client(), "test-agent", 1, 5*time.Second, nil)
	return NewDOMStrategy(fetcher), server.URL
}

func TestDOMExtractArticleParagraphs(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<nav>Site navigation links</nav>
	<article>
	  <p>La prima frase di questo articolo parla di terapie.</p>
	  <p>La seconda frase descrive i risultati dello studio clinico.</p>
	  <p>La terza frase riassume le prospettive future della ricerca.</p>
	</article>
	<footer>Footer junk</footer>
	</body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	text, err := strategy.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	paragraphs := strings.Split(text, "\n\n")
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 blank-line separated paragraphs, got %d: %q", len(paragraphs), text)
	}
	for _, want := range []string{"prima frase", "seconda frase", "terza frase"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing paragraph %q in %q", want, text)
		}
	}
	if strings.Contains(text, "navigation") || strings.Contains(text, "Footer") {
		t.Fatalf("chrome should be stripped: %q", text)
	}
}

func TestDOMExtractRemovesNoiseClasses(t *testing.T) {
	t.Parallel()

	html := `<html><body><article>
	  <div class="Advertisement-top"><p>Buy this product now, limited offer available today only!</p></div>
	  <div class="social-share"><p>Share on your favorite social network with one simple click.</p></div>
	  <p>Il contenuto reale di questo articolo descrive una nuova terapia sperimentale contro il tumore.</p>
	  <p>Un secondo paragrafo con altri dettagli rilevanti sullo studio condotto dai ricercatori.</p>
	</article></body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	text, err := strategy.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if strings.Contains(text, "Buy this product") || strings.Contains(text, "Share on") {
		t.Fatalf("noise classes should be removed: %q", text)
	}
	if !strings.Contains(text, "terapia sperimentale") {
		t.Fatalf("real content missing: %q", text)
	}
}

func TestDOMExtractContentClassFallback(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="sidebar-widget"><p>Widget text that should never be selected as the main body.</p></div>
	<div class="news-article-body">
	  <p>Paragrafo principale contenuto nel div con classe riconosciuta come corpo articolo.</p>
	  <p>Altro paragrafo sufficientemente lungo per superare la soglia minima di estrazione.</p>
	</div>
	</body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	text, err := strategy.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(text, "classe riconosciuta") {
		t.Fatalf("content container not found: %q", text)
	}
	if strings.Contains(text, "Widget text") {
		t.Fatalf("sidebar should not win container selection: %q", text)
	}
}

func TestDOMExtractCollapsesWhitespaceWithinParagraphs(t *testing.T) {
	t.Parallel()

	html := `<html><body><article>
	  <p>Molte     parole
	  distribuite   su
	  righe diverse che vanno ricompattate in una sola riga di testo leggibile.</p>
	  <p>Secondo paragrafo anch'esso piuttosto lungo per superare il controllo di soglia.</p>
	</article></body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	text, err := strategy.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(text, "Molte parole distribuite su righe diverse") {
		t.Fatalf("whitespace not collapsed: %q", text)
	}
}

func TestDOMExtractInsufficientText(t *testing.T) {
	t.Parallel()

	html := `<html><body><article><p>Troppo corto.</p></article></body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	_, err := strategy.Extract(context.Background(), url)
	if !errors.Is(err, scrape.ErrInsufficientText) {
		t.Fatalf("expected ErrInsufficientText, got %v", err)
	}
}

func TestDOMExtractBodyLastResort(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	  <p>Nessun contenitore dedicato, ma il body contiene comunque paragrafi veri e lunghi.</p>
	  <p>Il secondo paragrafo garantisce che il testo estratto superi la soglia dei cento caratteri.</p>
	</body></html>`

	strategy, url := newTestDOMStrategy(t, html)

	text, err := strategy.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(text, "Nessun contenitore dedicato") {
		t.Fatalf("body fallback failed: %q", text)
	}
}
