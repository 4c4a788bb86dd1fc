package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vmunix/mediaportal/internal/library"
)

const (
	audiobooSample    = 20
	audiobooMaxPage   = 3
	defaultNarrator   = "Аудиокнига"
	untitledAudiobook = "Неизвестно"
)

var (
	audiobooItemHref = regexp.MustCompile(`/\d+-.+\.html`)
	playerFile       = regexp.MustCompile(`file\s*:\s*["']([^"']+)["']`)
	playerPlaylist   = regexp.MustCompile(`file\s*:\s*'(\[\{.*?\}\])'`)
	archiveZip       = regexp.MustCompile(`(?i)archive\.org/(download|compress|details)/.+\.zip`)
	cloudButton      = regexp.MustCompile(`(?i)облака`)

	metaAuthor   = regexp.MustCompile(`(?i)(?:автор|писатель):\s*([^\n<]+)`)
	metaNarrator = regexp.MustCompile(`(?i)(?:исполнитель|чтец|диктор):\s*([^\n<]+)`)
	metaGenre    = regexp.MustCompile(`(?i)жанр:\s*([^\n<]+)`)
	metaYear     = regexp.MustCompile(`(?i)(?:год выпуска|год|дата|выпущено)[^:]*:\s*(\d{4})`)
)

// audioItem is one release card from a category or search page.
type audioItem struct {
	Title  string
	URL    string
	Author string
	Image  string
}

// Audioboo suggests audiobooks from audioboo.
type Audioboo struct {
	s *scraper
}

var _ Adapter = (*Audioboo)(nil)

// NewAudioboo creates the audiobooks adapter.
func NewAudioboo(cfg Config, log *slog.Logger) *Audioboo {
	return &Audioboo{s: newScraper("audioboo", cfg, log)}
}

func (a *Audioboo) Category() library.Category { return library.CategoryAudiobooks }

func (a *Audioboo) PickGenre(weights map[string]float64) string {
	return a.s.pickGenre(weights, AudiobookGenres())
}

// Suggest browses the genre's category, falling back to a site search, and
// scrapes one random release from the results.
func (a *Audioboo) Suggest(ctx context.Context, q Query) *Candidate {
	items := a.browse(ctx, q.Genre)
	if len(items) == 0 {
		items = a.search(ctx, q.Genre)
	}
	if len(items) == 0 {
		a.s.log.Info("no audiobooks found", "genre", q.Genre)
		return nil
	}

	item := items[a.s.intn(len(items))]
	c, err := a.details(ctx, item.URL)
	if err != nil {
		a.s.log.Warn("audiobook details failed", "url", item.URL, "error", err)
		return nil
	}
	if c.Creator == unknownAuthor && item.Author != "" {
		c.Creator = item.Author
	}
	if c.CoverURL == "" {
		c.CoverURL = item.Image
	}
	if c.Genre == "" {
		c.Genre = q.Genre
	}
	a.s.log.Info("audiobook suggested", "title", c.Title, "author", c.Creator, "url", c.SourceURL)
	return c
}

func (a *Audioboo) browse(ctx context.Context, genre string) []audioItem {
	slug, ok := audiobooSlug(genre)
	if !ok {
		a.s.log.Debug("no category for genre", "genre", genre)
		return nil
	}

	pages := []int{1}
	if n := 1 + a.s.intn(audiobooMaxPage); n > 1 {
		pages = []int{n, 1}
	}
	for _, n := range pages {
		path := "/" + slug + "/"
		if n > 1 {
			path += "page/" + strconv.Itoa(n) + "/"
		}
		doc, err := a.s.cachedPage(ctx, path)
		if err != nil {
			a.s.log.Warn("category listing failed", "slug", slug, "page", n, "error", err)
			continue
		}
		if items := a.cards(doc); len(items) > 0 {
			return a.sample(items)
		}
	}
	return nil
}

func (a *Audioboo) search(ctx context.Context, genre string) []audioItem {
	for _, term := range audiobooSearchTerms(genre) {
		form := map[string]string{
			"do":           "search",
			"subaction":    "search",
			"search_start": "1",
			"full_search":  "0",
			"result_from":  "1",
			"story":        term,
		}
		doc, err := a.s.postForm(ctx, "/index.php?do=search", form, map[string]string{"Referer": a.s.baseURL + "/"})
		if err != nil {
			a.s.log.Warn("audiobook search failed", "term", term, "error", err)
			continue
		}
		items := a.cards(doc)
		if len(items) == 0 {
			items = a.looseLinks(doc)
		}
		if len(items) > 0 {
			return a.sample(items)
		}
	}
	return nil
}

func (a *Audioboo) sample(items []audioItem) []audioItem {
	a.s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	if len(items) > audiobooSample {
		items = items[:audiobooSample]
	}
	return items
}

// cards parses release cards on a listing or search page.
func (a *Audioboo) cards(doc *goquery.Document) []audioItem {
	seen := make(map[string]bool)
	var items []audioItem
	doc.Find(".card, article, .short-item, .item").Each(func(_ int, card *goquery.Selection) {
		link := card.Find(`a[href*=".html"]:not(.card__img)`).First()
		if link.Length() == 0 {
			link = card.Find("a[href]").First()
		}
		href, _ := link.Attr("href")
		title := collapse(link.Text())
		if href == "" || utf8.RuneCountInString(title) < 2 {
			return
		}
		href = a.s.absURL(href)
		if seen[href] {
			return
		}
		seen[href] = true

		item := audioItem{Title: title, URL: href}
		if author := card.Find(`a[href*="/xfsearch/avtora/"], .author-link`); author.Length() > 0 {
			item.Author = text(author)
		}
		if img := card.Find(".card__img img, img").First(); img.Length() > 0 {
			item.Image = a.s.absURL(imageSrc(img))
		}
		items = append(items, item)
	})
	return items
}

// looseLinks collects /{id}-{slug}.html links when a page has no cards.
func (a *Audioboo) looseLinks(doc *goquery.Document) []audioItem {
	seen := make(map[string]bool)
	var items []audioItem
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		title := collapse(link.Text())
		if !audiobooItemHref.MatchString(href) || utf8.RuneCountInString(title) <= 5 {
			return
		}
		href = a.s.absURL(href)
		if seen[href] {
			return
		}
		seen[href] = true
		items = append(items, audioItem{Title: title, URL: href})
	})
	return items
}

func (a *Audioboo) details(ctx context.Context, pageURL string) (*Candidate, error) {
	doc, err := a.s.page(ctx, pageURL, map[string]string{"Referer": a.s.baseURL + "/"})
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	doc.Find(".full-meta li").Each(func(_ int, li *goquery.Selection) {
		key, value, ok := strings.Cut(collapse(li.Text()), ":")
		if ok {
			meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	})

	desc := doc.Find(".full-text, .story, #news-id, .page__text").First()
	if len(meta) == 0 {
		body := lineText(desc)
		for key, re := range map[string]*regexp.Regexp{
			"Автор":       metaAuthor,
			"Исполнитель": metaNarrator,
			"Жанр":        metaGenre,
			"Год":         metaYear,
		} {
			if m := re.FindStringSubmatch(body); m != nil {
				meta[key] = strings.TrimSpace(m[1])
			}
		}
	}

	c := &Candidate{
		Category:    library.CategoryAudiobooks,
		Title:       text(doc.Find("h1")),
		Creator:     firstNonEmpty(meta["Автор"], unknownAuthor),
		Narrator:    firstNonEmpty(meta["Исполнитель"], meta["Чтец"], defaultNarrator),
		Genre:       meta["Жанр"],
		Description: collapse(desc.Text()),
		SourceURL:   pageURL,
	}
	if c.Title == "" {
		c.Title = untitledAudiobook
	}
	if year, err := strconv.Atoi(meta["Год"]); err == nil {
		c.Year = year
	}
	if c.Genre == "" {
		var genres []string
		doc.Find(`.full-tag a, .story a[href*="/xfsearch/"], a[href*="/xfsearch/zhanr/"]`).EachWithBreak(func(_ int, g *goquery.Selection) bool {
			genres = append(genres, collapse(g.Text()))
			return len(genres) < 5
		})
		c.Genre = strings.Join(genres, ", ")
	}

	img := doc.Find(".full-img img, .story img, article img, .page__text img").First()
	if img.Length() == 0 {
		img = doc.Find("img[data-src]").First()
	}
	if img.Length() > 0 {
		c.CoverURL = a.s.absURL(imageSrc(img))
	}

	c.DownloadURL = a.downloadLink(doc)
	if c.DownloadURL == "" {
		return nil, ErrNoDownloadLink
	}
	return c, nil
}

// downloadLink resolves the release's audio or archive link. The player
// config is tried first, then archive.org zip links, then the cloud button,
// then any archive.org link.
func (a *Audioboo) downloadLink(doc *goquery.Document) string {
	var link string
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		body := script.Text()
		if !strings.Contains(body, "PlayerJS") && !strings.Contains(body, "file:") && !strings.Contains(body, "playlist:") {
			return true
		}
		m := playerPlaylist.FindStringSubmatch(body)
		if m == nil {
			m = playerFile.FindStringSubmatch(body)
		}
		if m == nil {
			return true
		}
		link = playerFileURL(m[1])
		return link == ""
	})
	if link != "" {
		return a.s.absURL(link)
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		if archiveZip.MatchString(href) {
			link = strings.Replace(href, "/details/", "/download/", 1)
			return false
		}
		return true
	})

	if link == "" {
		btn := doc.Find(`a[href*="go.php?url="]`).First()
		if btn.Length() == 0 {
			btn = doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
				return cloudButton.MatchString(s.Text())
			}).First()
		}
		if href, ok := btn.Attr("href"); ok {
			switch {
			case strings.Contains(href, "/engine/go.php?url="):
				link = decodeGoLink(href)
			case strings.Contains(href, "archive.org"):
				link = href
			}
		}
	}

	if link == "" {
		if href, ok := doc.Find(`a[href*="archive.org/"]`).First().Attr("href"); ok {
			link = href
		}
	}
	return a.s.absURL(link)
}

// playerFileURL decodes a PlayerJS file value, which is either a URL or a
// JSON playlist whose first entry is used.
func playerFileURL(value string) string {
	if strings.HasPrefix(value, "[{") {
		var playlist []struct {
			File string `json:"file"`
		}
		if err := json.Unmarshal([]byte(value), &playlist); err != nil || len(playlist) == 0 {
			return ""
		}
		value = playlist[0].File
	}
	return decodeGoLink(value)
}

// decodeGoLink unwraps /engine/go.php?url=BASE64 redirect links. Other
// values are returned unchanged.
func decodeGoLink(href string) string {
	const marker = "/engine/go.php?url="
	i := strings.Index(href, marker)
	if i < 0 {
		return href
	}
	encoded, _, _ := strings.Cut(href[i+len(marker):], "&")
	if pad := len(encoded) % 4; pad != 0 {
		encoded += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return href
		}
	}
	return strings.ReplaceAll(string(decoded), "&amp;", "&")
}

// lineText returns the element's text nodes, trimmed, one per line.
func lineText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

func imageSrc(img *goquery.Selection) string {
	if src, ok := img.Attr("src"); ok && src != "" {
		return src
	}
	src, _ := img.Attr("data-src")
	return src
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
