// Package wordlist reads the words to translate from plain-text and HTML
// sources.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// IgnoredTags holds elements whose text is never collected.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"noscript": true,
	"template": true,
}

// noTranslateAttr marks an element whose subtree is skipped.
const noTranslateAttr = "data-no-translate"

// ReadText reads one entry per line. Blank lines and lines starting with '#'
// are skipped.
func ReadText(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// ReadHTML collects entries from an HTML document in document order.
// With a selector, the text of each matching element is one entry. Without
// one, every word of the visible text under <body> is an entry.
func ReadHTML(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	if selector == "" {
		var words []string
		doc.Find("body").Each(func(_ int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				words = appendWords(words, n)
			}
		})
		return words, nil
	}

	var words []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if skipped(s) {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			words = append(words, text)
		}
	})
	return words, nil
}

// ReadFile reads path as HTML when it has an .html/.htm extension or a
// selector is given, and as plain text otherwise.
func ReadFile(path, selector string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if selector != "" || ext == ".html" || ext == ".htm" {
		return ReadHTML(f, selector)
	}
	return ReadText(f)
}

func skipped(s *goquery.Selection) bool {
	if s.Closest("[" + noTranslateAttr + "]").Length() > 0 {
		return true
	}
	for _, n := range s.Nodes {
		for p := n; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && IgnoredTags[strings.ToLower(p.Data)] {
				return true
			}
		}
	}
	return false
}

func appendWords(words []string, n *html.Node) []string {
	if n.Type == html.ElementNode {
		if IgnoredTags[strings.ToLower(n.Data)] {
			return words
		}
		for _, attr := range n.Attr {
			if attr.Key == noTranslateAttr {
				return words
			}
		}
	}

	if n.Type == html.TextNode {
		words = append(words, splitWords(n.Data)...)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		words = appendWords(words, c)
	}
	return words
}

// splitWords breaks text into words of letters, keeping inner hyphens and
// apostrophes ("Mutter-Kind", "l'homme").
func splitWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && r != '-' && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-'")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
