package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmunix/mediaportal/internal/library"
)

const (
	flibustaListCap = 50
	flibustaSample  = 20

	untitledBook  = "Без названия"
	unknownAuthor = "Неизвестен"
	noDescription = "Описание отсутствует"
)

// bookFormats is the download format preference, best first.
var bookFormats = []string{"epub", "fb2", "mobi"}

var (
	flibustaBookHref = regexp.MustCompile(`^/b/(\d+)$`)
	editionYear      = regexp.MustCompile(`издание\s+(\d{4})\s*г`)
	pressYear        = regexp.MustCompile(`(\d{4})\s*г\.`)
)

// bookItem is one book link from a genre or search listing.
type bookItem struct {
	ID     string
	Title  string
	Author string
}

// Flibusta suggests books from a flibusta catalogue mirror.
type Flibusta struct {
	s *scraper
}

var _ Adapter = (*Flibusta)(nil)

// NewFlibusta creates the books adapter.
func NewFlibusta(cfg Config, log *slog.Logger) *Flibusta {
	return &Flibusta{s: newScraper("flibusta", cfg, log)}
}

func (f *Flibusta) Category() library.Category { return library.CategoryBooks }

func (f *Flibusta) PickGenre(weights map[string]float64) string {
	return f.s.pickGenre(weights, BookGenres())
}

// Suggest browses the genre listing, falling back to a keyword search, and
// scrapes one random book from the results.
func (f *Flibusta) Suggest(ctx context.Context, q Query) *Candidate {
	code := flibustaCode(q.Genre, f.s.intn)
	items, err := f.browse(ctx, code)
	if err != nil {
		f.s.log.Warn("genre listing failed", "genre", q.Genre, "code", code, "error", err)
	}
	if len(items) == 0 {
		items = f.search(ctx, q.Genre)
	}
	if len(items) == 0 {
		f.s.log.Info("no books found", "genre", q.Genre, "code", code)
		return nil
	}

	item := items[f.s.intn(len(items))]
	c, err := f.details(ctx, item.ID)
	if err != nil {
		f.s.log.Warn("book details failed", "id", item.ID, "title", item.Title, "error", err)
		return nil
	}
	if c.Creator == unknownAuthor && item.Author != "" {
		c.Creator = item.Author
	}
	c.Genre = q.Genre
	f.s.log.Info("book suggested", "title", c.Title, "author", c.Creator, "url", c.SourceURL)
	return c
}

func (f *Flibusta) browse(ctx context.Context, code string) ([]bookItem, error) {
	doc, err := f.s.cachedPage(ctx, "/g/"+code)
	if err != nil {
		return nil, err
	}
	return f.sample(bookLinks(doc.Find("div#main"))), nil
}

func (f *Flibusta) search(ctx context.Context, genre string) []bookItem {
	for _, term := range flibustaSearchTerms(genre) {
		doc, err := f.s.cachedPage(ctx, "/booksearch?ask="+url.QueryEscape(term))
		if err != nil {
			f.s.log.Warn("book search failed", "term", term, "error", err)
			continue
		}
		if items := bookLinks(doc.Find("div#main")); len(items) > 0 {
			f.s.log.Debug("book search matched", "term", term, "count", len(items))
			return f.sample(items)
		}
	}
	return nil
}

// sample keeps a random subset of at most flibustaSample items.
func (f *Flibusta) sample(items []bookItem) []bookItem {
	f.s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	if len(items) > flibustaSample {
		items = items[:flibustaSample]
	}
	return items
}

// bookLinks collects distinct /b/{id} links with the author link that
// follows each one.
func bookLinks(root *goquery.Selection) []bookItem {
	seen := make(map[string]bool)
	var items []bookItem
	root.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := flibustaBookHref.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return true
		}
		title := collapse(a.Text())
		if title == "" {
			return true
		}
		seen[m[1]] = true

		item := bookItem{ID: m[1], Title: title}
		if next := a.NextAllFiltered("a").First(); next.Length() > 0 {
			if h, _ := next.Attr("href"); strings.HasPrefix(h, "/a/") {
				item.Author = collapse(next.Text())
			}
		}
		items = append(items, item)
		return len(items) < flibustaListCap
	})
	return items
}

func (f *Flibusta) details(ctx context.Context, id string) (*Candidate, error) {
	pageURL := f.s.absURL("/b/" + id)
	doc, err := f.s.page(ctx, pageURL, nil)
	if err != nil {
		return nil, err
	}

	c := &Candidate{
		Category:    library.CategoryBooks,
		Title:       bookTitle(doc),
		Creator:     bookAuthors(doc),
		Year:        bookYear(doc.Text()),
		Description: bookAnnotation(doc),
		CoverURL:    f.s.absURL(bookCover(doc)),
		SourceURL:   pageURL,
	}
	for _, format := range bookFormats {
		path := fmt.Sprintf("/b/%s/%s", id, format)
		if doc.Find(fmt.Sprintf(`a[href=%q]`, path)).Length() > 0 {
			c.DownloadURL = f.s.absURL(path)
			break
		}
	}
	if c.DownloadURL == "" {
		return nil, fmt.Errorf("book %s: %w", id, ErrNoDownloadLink)
	}
	return c, nil
}

func bookTitle(doc *goquery.Document) string {
	title := text(doc.Find("h1.title"))
	if i := strings.Index(title, "("); i >= 0 {
		title = title[:i]
	}
	title = collapse(title)
	if title == "" {
		return untitledBook
	}
	return title
}

// bookAuthors joins the first two author links outside reader comments.
func bookAuthors(doc *goquery.Document) string {
	seen := make(map[string]bool)
	var names []string
	doc.Find(`a[href^="/a/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.ParentsFiltered(".comment").Length() > 0 {
			return true
		}
		name := collapse(a.Text())
		if utf8.RuneCountInString(name) <= 2 || seen[name] {
			return true
		}
		seen[name] = true
		names = append(names, name)
		return len(names) < 2
	})
	if len(names) == 0 {
		return unknownAuthor
	}
	return strings.Join(names, ", ")
}

func bookCover(doc *goquery.Document) string {
	if src, ok := doc.Find(`img[title="Cover image"]`).First().Attr("src"); ok && src != "" {
		return src
	}
	var cover string
	doc.Find("div#main img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if strings.Contains(src, "/i/") &&
			(strings.Contains(src, "cover") || strings.Contains(src, "jpg")) &&
			!strings.Contains(src, "znak.gif") {
			cover = src
			return false
		}
		return true
	})
	return cover
}

func bookYear(pageText string) int {
	m := editionYear.FindStringSubmatch(pageText)
	if m == nil {
		m = pressYear.FindStringSubmatch(pageText)
	}
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}

// bookAnnotation joins the paragraphs between the "Аннотация" heading and
// the next heading or rule.
func bookAnnotation(doc *goquery.Document) string {
	var parts []string
	doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), "аннотация") {
			return true
		}
		for n := h.Next(); n.Length() > 0; n = n.Next() {
			if n.Is("h2, hr") {
				break
			}
			if n.Is("p") {
				if t := collapse(n.Text()); t != "" {
					parts = append(parts, t)
				}
			}
		}
		return false
	})
	if len(parts) == 0 {
		return noDescription
	}
	return strings.Join(parts, "\n")
}
