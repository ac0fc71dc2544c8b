package rss

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	dps "github.com/markusmobius/go-dateparser"
	"github.com/mmcdole/gofeed"

	"launcher/internal/page"
)

// BuildPage turns a feed into a list: one item per entry, with actions to
// open the link in the browser or copy it.
func BuildPage(feed *gofeed.Feed, now time.Time) *page.List {
	list := &page.List{Title: feed.Title, Items: make([]page.Item, 0, len(feed.Items))}

	for _, entry := range feed.Items {
		item := page.Item{
			ID:          entry.GUID,
			Title:       entry.Title,
			Subtitle:    strings.Join(entry.Categories, ", "),
			Accessories: []string{},
			Actions:     []page.Action{},
		}

		if published, ok := publishedAt(entry); ok {
			item.Accessories = append(item.Accessories, humanize.RelTime(published, now, "ago", "from now"))
		}

		if entry.Link != "" {
			item.Actions = append(item.Actions,
				page.Action{Title: "Open in browser", OnAction: &page.Open{Target: entry.Link, Exit: true}},
				page.Action{Title: "Copy Link", Key: "c", OnAction: &page.Copy{Text: entry.Link, Exit: true}},
			)
		}

		list.Items = append(list.Items, item)
	}

	return list
}

// publishedAt prefers the dates gofeed parsed itself and falls back to
// lenient parsing of the raw strings some feeds emit.
func publishedAt(entry *gofeed.Item) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed, true
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed, true
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if t, ok := parseDate(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}

	parser := dps.Parser{}
	parsed, err := parser.Parse(&dps.Configuration{}, raw)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed.Time, true
}
