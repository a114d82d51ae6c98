package feed

import (
	"strings"
	"testing"
)

func TestEntryParser_RepostDropped(t *testing.T) {
	parser := NewEntryParser()

	titles := []string{
		"RT @bob: spam",
		"rt @bob: spam",
		"RT something reshared",
		"  RT @bob: leading space",
	}

	for _, title := range titles {
		item, reason := parser.Run("alice", RawEntry{
			ID:    "1",
			Title: title,
			Link:  "https://example.com/1",
		}, true)

		if item != nil {
			t.Errorf("Expected %q to be dropped as repost, got item %+v", title, item)
		}
		if reason != DropRepost {
			t.Errorf("Expected drop reason %q for %q, got %q", DropRepost, title, reason)
		}
	}
}

func TestEntryParser_RepostKeptWhenPolicyAllows(t *testing.T) {
	parser := NewEntryParser()

	item, reason := parser.Run("alice", RawEntry{
		ID:    "1",
		Title: "RT @bob: reshared content",
		Link:  "https://example.com/1",
	}, false)

	if item == nil {
		t.Fatalf("Expected item, got drop reason %q", reason)
	}
	if !item.IsRepost {
		t.Error("Expected IsRepost to be true")
	}
	if item.MainText != "RT @bob: reshared content" {
		t.Errorf("Expected title fallback text, got %q", item.MainText)
	}
}

func TestEntryParser_NotARepost(t *testing.T) {
	parser := NewEntryParser()

	// "rt" prefix without a following space is ordinary text
	item, _ := parser.Run("alice", RawEntry{
		ID:    "1",
		Title: "rtfm is good advice",
		Link:  "https://example.com/1",
	}, true)

	if item == nil {
		t.Fatal("Expected item, entry is not a repost")
	}
	if item.IsRepost {
		t.Error("Expected IsRepost to be false")
	}
}

func TestEntryParser_MainTextExcludesQuoteBlock(t *testing.T) {
	parser := NewEntryParser()

	entry := RawEntry{
		ID:    "42",
		Title: "ignored title",
		Link:  "https://example.com/42",
		Summary: `<p>My own   take on this.</p>
<p>Second paragraph.</p>
<blockquote>
  <b>PopPulse (@PoppPulse)</b>
  <p>The quoted hot take.</p>
  <p>More quoted text.</p>
</blockquote>`,
	}

	item, reason := parser.Run("alice", entry, true)
	if item == nil {
		t.Fatalf("Expected item, got drop reason %q", reason)
	}

	expected := "My own take on this.\nSecond paragraph."
	if item.MainText != expected {
		t.Errorf("Expected main text %q, got %q", expected, item.MainText)
	}
	if item.QuotedAuthor != "PoppPulse" {
		t.Errorf("Expected quoted author 'PoppPulse', got %q", item.QuotedAuthor)
	}
	if item.QuotedText != "The quoted hot take. More quoted text." {
		t.Errorf("Unexpected quoted text: %q", item.QuotedText)
	}
	if !item.HasQuote() {
		t.Error("Expected HasQuote to be true")
	}
}

func TestEntryParser_QuoteAuthorWithoutHandleToken(t *testing.T) {
	parser := NewEntryParser()

	entry := RawEntry{
		ID:      "7",
		Title:   "t",
		Link:    "https://example.com/7",
		Summary: `<p>Main.</p><blockquote><strong>Some Display Name</strong><p>Quoted.</p></blockquote>`,
	}

	item, _ := parser.Run("alice", entry, true)
	if item == nil {
		t.Fatal("Expected item")
	}
	if item.QuotedAuthor != "Some Display Name" {
		t.Errorf("Expected full bold text as author, got %q", item.QuotedAuthor)
	}
	if item.QuotedText != "Quoted." {
		t.Errorf("Expected quoted text 'Quoted.', got %q", item.QuotedText)
	}
}

func TestEntryParser_QuoteWithoutTextYieldsNoPair(t *testing.T) {
	parser := NewEntryParser()

	entry := RawEntry{
		ID:      "8",
		Title:   "t",
		Link:    "https://example.com/8",
		Summary: `<p>Main.</p><blockquote><b>@ghost</b></blockquote>`,
	}

	item, _ := parser.Run("alice", entry, true)
	if item == nil {
		t.Fatal("Expected item")
	}
	if item.QuotedAuthor != "" || item.QuotedText != "" {
		t.Errorf("Expected empty quote pair, got author=%q text=%q", item.QuotedAuthor, item.QuotedText)
	}
	if item.HasQuote() {
		t.Error("Expected HasQuote to be false")
	}
}

func TestEntryParser_NoBodyFallsBackToTitle(t *testing.T) {
	parser := NewEntryParser()

	item, reason := parser.Run("alice", RawEntry{
		ID:    "9",
		Title: "Just a plain status",
		Link:  "https://example.com/9",
	}, true)

	if item == nil {
		t.Fatalf("Expected item, got drop reason %q", reason)
	}
	if item.MainText != "Just a plain status" {
		t.Errorf("Expected title as main text, got %q", item.MainText)
	}
	if item.QuotedAuthor != "" || item.QuotedText != "" {
		t.Error("Expected empty quote fields without a body")
	}
	if len(item.MediaURLs) != 0 {
		t.Errorf("Expected no media URLs, got %v", item.MediaURLs)
	}
}

func TestEntryParser_EmptyTextDropped(t *testing.T) {
	parser := NewEntryParser()

	item, reason := parser.Run("alice", RawEntry{
		ID:   "10",
		Link: "https://example.com/10",
	}, true)

	if item != nil {
		t.Errorf("Expected drop, got item %+v", item)
	}
	if reason != DropEmptyText {
		t.Errorf("Expected drop reason %q, got %q", DropEmptyText, reason)
	}
}

func TestEntryParser_MediaURLsInDocumentOrder(t *testing.T) {
	parser := NewEntryParser()

	entry := RawEntry{
		ID:    "11",
		Title: "t",
		Link:  "https://example.com/11",
		Summary: `<p>Pics.</p>
<img src="https://nitter.net/pic/media%2Fone.jpg" />
<img src="https://nitter.net/pic/media%2Ftwo.jpg" />
<img src="https://nitter.net/pic/media%2Fone.jpg" />`,
	}

	item, _ := parser.Run("alice", entry, true)
	if item == nil {
		t.Fatal("Expected item")
	}

	expected := []string{
		"https://nitter.net/pic/media%2Fone.jpg",
		"https://nitter.net/pic/media%2Ftwo.jpg",
		"https://nitter.net/pic/media%2Fone.jpg",
	}
	if len(item.MediaURLs) != len(expected) {
		t.Fatalf("Expected %d media URLs, got %d: %v", len(expected), len(item.MediaURLs), item.MediaURLs)
	}
	for i, url := range expected {
		if item.MediaURLs[i] != url {
			t.Errorf("Media URL %d: expected %q, got %q", i, url, item.MediaURLs[i])
		}
	}
}

func TestEntryParser_IDFallsBackToPermalink(t *testing.T) {
	parser := NewEntryParser()

	item, _ := parser.Run("alice", RawEntry{
		Title: "no guid here",
		Link:  "https://example.com/permalink",
	}, true)

	if item == nil {
		t.Fatal("Expected item")
	}
	if item.ID != "https://example.com/permalink" {
		t.Errorf("Expected permalink as id, got %q", item.ID)
	}
}

func TestEntryParser_BodyWithoutParagraphsFallsBackToTitle(t *testing.T) {
	parser := NewEntryParser()

	item, _ := parser.Run("alice", RawEntry{
		ID:      "12",
		Title:   "title text",
		Link:    "https://example.com/12",
		Summary: `<img src="https://example.com/pic.jpg" />`,
	}, true)

	if item == nil {
		t.Fatal("Expected item")
	}
	if item.MainText != "title text" {
		t.Errorf("Expected title fallback, got %q", item.MainText)
	}
	if len(item.MediaURLs) != 1 {
		t.Errorf("Expected media to survive title fallback, got %v", item.MediaURLs)
	}
}

func TestEntryParser_WhitespaceNormalization(t *testing.T) {
	parser := NewEntryParser()

	item, _ := parser.Run("alice", RawEntry{
		ID:      "13",
		Title:   "t",
		Link:    "https://example.com/13",
		Summary: "<p>  spaced\n\tout\t text  </p>",
	}, true)

	if item == nil {
		t.Fatal("Expected item")
	}
	if item.MainText != "spaced out text" {
		t.Errorf("Expected normalized whitespace, got %q", item.MainText)
	}
	if strings.Contains(item.MainText, "\t") {
		t.Error("Tabs should not survive normalization")
	}
}
