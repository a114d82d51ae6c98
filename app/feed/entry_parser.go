package feed

import (
	"cmp"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Drop reasons returned by EntryParser.Run.
const (
	DropRepost    = "repost"
	DropEmptyText = "empty text"
)

var handleRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// EntryParser converts one raw feed entry into a normalized Item. Every
// assumption about the upstream HTML shape (quote blocks, paragraph
// structure, image markup) lives here so the scraping heuristic can be
// swapped without touching the rest of the pipeline.
type EntryParser struct{}

func NewEntryParser() *EntryParser {
	return &EntryParser{}
}

// Run parses a raw entry for the given account. It returns nil and a drop
// reason when the entry produces nothing publishable.
func (p *EntryParser) Run(account string, entry RawEntry, excludeReposts bool) (*Item, string) {
	isRepost := looksLikeRepost(entry.Title)
	if isRepost && excludeReposts {
		return nil, DropRepost
	}

	item := &Item{
		ID:        cmp.Or(entry.ID, entry.Link),
		Account:   account,
		Permalink: entry.Link,
		IsRepost:  isRepost,
	}

	if entry.Summary == "" {
		item.MainText = strings.TrimSpace(entry.Title)
		if item.MainText == "" {
			return nil, DropEmptyText
		}
		return item, ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(entry.Summary))
	if err != nil {
		// An unparseable body degrades to the title, same as a missing one.
		item.MainText = strings.TrimSpace(entry.Title)
		if item.MainText == "" {
			return nil, DropEmptyText
		}
		return item, ""
	}

	// At most one quote container is expected in the documented shape.
	quote := doc.Find("blockquote").First()

	var paras []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("blockquote").Length() > 0 {
			return
		}
		if txt := normalizeSpace(s.Text()); txt != "" {
			paras = append(paras, txt)
		}
	})

	item.MainText = strings.Join(paras, "\n")
	if item.MainText == "" {
		item.MainText = strings.TrimSpace(entry.Title)
	}

	if quote.Length() > 0 {
		item.QuotedAuthor, item.QuotedText = p.parseQuote(quote)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			item.MediaURLs = append(item.MediaURLs, src)
		}
	})

	if item.MainText == "" {
		return nil, DropEmptyText
	}

	return item, ""
}

// parseQuote extracts the author handle and text of an embedded quote
// block. Both values are returned empty unless both could be extracted.
func (p *EntryParser) parseQuote(quote *goquery.Selection) (string, string) {
	var author string
	if b := quote.Find("b, strong").First(); b.Length() > 0 {
		// Author usually renders as e.g. <b>PopPulse (@PoppPulse)</b>.
		bText := normalizeSpace(b.Text())
		if m := handleRe.FindStringSubmatch(bText); m != nil {
			author = m[1]
		} else {
			author = bText
		}
	}

	var quoted []string
	quote.Find("p").Each(func(_ int, s *goquery.Selection) {
		if txt := normalizeSpace(s.Text()); txt != "" {
			quoted = append(quoted, txt)
		}
	})
	text := strings.Join(quoted, " ")

	if author == "" || text == "" {
		return "", ""
	}

	return author, text
}

// looksLikeRepost detects reposts from the entry title. Common patterns
// are "RT @user:" or a bare "RT " prefix.
func looksLikeRepost(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	return strings.HasPrefix(t, "rt @") || strings.HasPrefix(t, "rt ")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
