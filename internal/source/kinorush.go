package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vmunix/mediaportal/internal/library"
)

const (
	kinorushMaxPage = 5
	kinorushListCap = 20
	unknownQuality  = "Unknown"
)

var (
	yearPattern   = regexp.MustCompile(`(\d{4})`)
	numberPattern = regexp.MustCompile(`(\d+\.?\d*)`)
	sizeColumn    = regexp.MustCompile(`flex-basis.*15%`)
	nothingFound  = regexp.MustCompile(`(?i)ничего не найдено|не дал никаких результатов`)
)

// seriesMarkers identify TV series by title.
var seriesMarkers = []string{"(сериал", "сериал)", "сезон"}

// navigationSuffixes are section links that look like cards.
var navigationSuffixes = []string{"/films/", "/serials/", "/multfilmy/"}

// movieItem is one card from a listing page.
type movieItem struct {
	Title string
	URL   string
	Year  int
}

// movieDetails is everything scraped from a movie page.
type movieDetails struct {
	Title       string
	Year        int
	Director    string
	Genre       string
	RatingKP    float64
	RatingIMDB  float64
	Description string
	PosterURL   string
	Torrents    []Torrent
	SourceURL   string
}

// Kinorush suggests movies from the kinorush torrent index.
type Kinorush struct {
	s *scraper
}

var _ Adapter = (*Kinorush)(nil)

// NewKinorush creates the movies adapter.
func NewKinorush(cfg Config, log *slog.Logger) *Kinorush {
	return &Kinorush{s: newScraper("kinorush", cfg, log)}
}

func (k *Kinorush) Category() library.Category { return library.CategoryMovies }

func (k *Kinorush) PickGenre(weights map[string]float64) string {
	return k.s.pickGenre(weights, MovieGenres())
}

// Suggest browses a random listing page and returns the first movie, in
// shuffled order, that passes the year, rating and size filters.
func (k *Kinorush) Suggest(ctx context.Context, q Query) *Candidate {
	k.s.warmUp(ctx)

	page := 1 + k.s.intn(kinorushMaxPage)
	items, err := k.browse(ctx, page)
	if err != nil {
		k.s.log.Warn("film listing failed", "page", page, "error", err)
		return nil
	}
	if len(items) == 0 {
		k.s.log.Info("no films listed", "page", page)
		return nil
	}
	k.s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	k.s.log.Debug("films listed", "page", page, "count", len(items))

	for _, item := range items {
		if ctx.Err() != nil {
			return nil
		}
		d, err := k.details(ctx, item.URL)
		if err != nil {
			k.s.log.Warn("film details failed", "url", item.URL, "error", err)
			continue
		}
		c, err := d.candidate(q)
		if err != nil {
			k.s.log.Info("film skipped", "title", d.Title, "year", d.Year, "reason", err)
			continue
		}
		k.s.log.Info("film suggested", "title", c.Title, "year", c.Year, "rating", c.Rating,
			"quality", c.Quality, "size_gb", c.SizeGB)
		return c
	}
	k.s.log.Info("no film passed the filters", "page", page, "checked", len(items))
	return nil
}

func (k *Kinorush) browse(ctx context.Context, page int) ([]movieItem, error) {
	path := "/films/"
	if page > 1 {
		path += "page/" + strconv.Itoa(page) + "/"
	}
	doc, err := k.s.cachedPage(ctx, path)
	if err != nil {
		return nil, err
	}
	return k.movieCards(doc), nil
}

// movieCards extracts distinct films from a listing, skipping navigation
// links and series.
func (k *Kinorush) movieCards(doc *goquery.Document) []movieItem {
	if doc.Find("div.berrors").Length() > 0 || nothingFound.MatchString(doc.Text()) {
		return nil
	}

	cards := doc.Find("div.card, article.card")
	if cards.Length() == 0 {
		cards = doc.Find("div.movie-item")
	}
	if cards.Length() == 0 {
		cards = doc.Find("article.short, div.short")
	}

	seen := make(map[string]bool)
	var items []movieItem
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		item, ok := k.movieCard(card)
		if ok && !seen[item.URL] {
			seen[item.URL] = true
			items = append(items, item)
		}
		return len(items) < kinorushListCap
	})
	return items
}

func (k *Kinorush) movieCard(card *goquery.Selection) (movieItem, bool) {
	link := card.Find(".card__title a[href]").First()
	if link.Length() == 0 {
		desc := card.Find(`div[class*="card__desc"], div[class*="card__content"]`).First()
		link = desc.Find("h1 a[href], h2 a[href], h3 a[href]").First()
		if link.Length() == 0 {
			link = desc.Find("a[href]").First()
		}
	}
	if link.Length() == 0 {
		link = card.Find("a[href]").Not(`[class*="card__img"]`).First()
	}
	if link.Length() == 0 {
		return movieItem{}, false
	}

	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return movieItem{}, false
	}
	item := movieItem{Title: collapse(link.Text()), URL: k.s.absURL(href)}
	if isNavigation(item.URL) || isSeries(item.URL, item.Title) {
		return movieItem{}, false
	}

	item.Year = firstYear(text(card.Find(`a[href*="/xfsearch/year/"]`)))
	if item.Year == 0 {
		item.Year = firstYear(item.Title)
	}
	return item, true
}

func (k *Kinorush) details(ctx context.Context, pageURL string) (*movieDetails, error) {
	doc, err := k.s.page(ctx, pageURL, map[string]string{"Referer": k.s.baseURL + "/"})
	if err != nil {
		return nil, err
	}

	d := &movieDetails{
		Title:     text(doc.Find("h1")),
		Year:      firstYear(text(doc.Find(`a[href*="/xfsearch/year/"]`))),
		SourceURL: pageURL,
	}

	if dir := doc.Find(`div[itemprop="director"]`).First(); dir.Length() > 0 {
		names := dir.Find("a").Map(func(_ int, a *goquery.Selection) string { return collapse(a.Text()) })
		if len(names) > 0 {
			d.Director = strings.Join(names, ", ")
		} else {
			d.Director = collapse(dir.Text())
		}
	}
	if d.Director == "" {
		d.Director = labelled(doc, "Режиссер:")
	}

	var genres []string
	doc.Find(`a[href*="/xfsearch/zhanr/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		genres = append(genres, collapse(a.Text()))
		return len(genres) < 3
	})
	d.Genre = strings.Join(genres, ", ")
	if d.Genre == "" {
		d.Genre = labelled(doc, "Жанр:")
	}

	d.RatingKP = firstNumber(text(doc.Find("div.r-kp")))
	d.RatingIMDB = firstNumber(text(doc.Find("div.r-imdb")))

	desc := doc.Find(`div.page__text.full-text[itemprop="description"]`)
	if desc.Length() == 0 {
		desc = doc.Find("div.ftext")
	}
	d.Description = collapse(desc.First().Text())

	poster := doc.Find("div.pmovie__poster img").First()
	if poster.Length() == 0 {
		poster = doc.Find("div.fposter img").First()
	}
	if src, ok := poster.Attr("src"); ok {
		d.PosterURL = k.s.absURL(src)
	}

	doc.Find("div.full_links-torrent").Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find(`a[href*="do=download"]`).First().Attr("href")
		if !ok || href == "" {
			return
		}
		t := Torrent{
			Quality:     firstNonEmpty(text(block.Find("span.quality")), unknownQuality),
			Translation: text(block.Find("div.full_links-translate p")),
			URL:         k.s.absURL(href),
		}
		block.Find("div[style]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
			style, _ := div.Attr("style")
			if !sizeColumn.MatchString(style) {
				return true
			}
			t.SizeGB = ParseSizeGB(text(div.Find("p")))
			return false
		})
		d.Torrents = append(d.Torrents, t)
	})
	return d, nil
}

// bestRating is the kinopoisk rating, falling back to IMDb, else 0.
func (d *movieDetails) bestRating() float64 {
	if d.RatingKP > 0 {
		return d.RatingKP
	}
	return d.RatingIMDB
}

// candidate applies the query's filters. An unknown year passes the year
// filter; the largest qualifying torrent is chosen.
func (d *movieDetails) candidate(q Query) (*Candidate, error) {
	if q.MinYear > 0 && d.Year > 0 && d.Year < q.MinYear {
		return nil, fmt.Errorf("%w: year %d before %d", ErrFiltered, d.Year, q.MinYear)
	}
	rating := d.bestRating()
	if rating < q.MinRating {
		return nil, fmt.Errorf("%w: rating %.1f below %.1f", ErrFiltered, rating, q.MinRating)
	}
	best, ok := LargestTorrent(d.Torrents, q.MinFileSizeGB)
	if !ok {
		return nil, fmt.Errorf("%w: no torrent of at least %.1f GB among %d", ErrFiltered, q.MinFileSizeGB, len(d.Torrents))
	}

	return &Candidate{
		Category:    library.CategoryMovies,
		Title:       d.Title,
		Creator:     d.Director,
		Year:        d.Year,
		Genre:       d.Genre,
		Description: d.Description,
		Rating:      rating,
		CoverURL:    d.PosterURL,
		DownloadURL: best.URL,
		SourceURL:   d.SourceURL,
		Quality:     best.Quality,
		Translation: best.Translation,
		SizeGB:      best.SizeGB,
	}, nil
}

// LargestTorrent returns the largest torrent of at least minGB.
func LargestTorrent(torrents []Torrent, minGB float64) (Torrent, bool) {
	var best Torrent
	found := false
	for _, t := range torrents {
		if t.SizeGB < minGB {
			continue
		}
		if !found || t.SizeGB > best.SizeGB {
			best, found = t, true
		}
	}
	return best, found
}

// ParseSizeGB converts sizes such as "5.92 GB", "700 МБ" or "1,2 TB" to
// gigabytes. A bare number is taken as gigabytes; unparsable input is 0.
func ParseSizeGB(s string) float64 {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	switch {
	case strings.Contains(s, "TB") || strings.Contains(s, "ТБ"):
		return n * 1024
	case strings.Contains(s, "MB") || strings.Contains(s, "МБ"):
		return n / 1024
	default:
		return n
	}
}

func isNavigation(u string) bool {
	if strings.Contains(u, "/xfsearch/") {
		return true
	}
	for _, suffix := range navigationSuffixes {
		if strings.HasSuffix(u, suffix) {
			return true
		}
	}
	return false
}

func isSeries(u, title string) bool {
	if strings.Contains(u, "/serials/") {
		return true
	}
	lower := strings.ToLower(title)
	for _, marker := range seriesMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func firstYear(s string) int {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

func firstNumber(s string) float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	n, _ := strconv.ParseFloat(m, 64)
	return n
}

// labelled returns the text of the element holding label, without the label.
func labelled(doc *goquery.Document, label string) string {
	var value string
	doc.Find("body *").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		for c := el.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.Contains(c.Data, label) {
				value = collapse(strings.Replace(el.Text(), label, "", 1))
				return false
			}
		}
		return true
	})
	return value
}
