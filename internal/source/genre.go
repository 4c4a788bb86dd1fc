package source

import (
	"sort"
	"strings"
)

// flibustaGenres maps each catalogue group to its subgenres and their codes.
var flibustaGenres = map[string]map[string]string{
	"Деловая литература": {
		"Деловая литература": "economics_ref",
		"Карьера, кадры":     "popular_business",
		"Маркетинг, PR":      "org_behavior",
		"Финансы":            "banking",
		"Экономика":          "economics",
	},
	"Детективы и триллеры": {
		"Артефакт-детективы":        "det_artifact",
		"Боевик":                    "det_action",
		"Дамский детективный роман": "det_lady",
		"Детективы":                 "detective",
		"Иронический детектив":      "det_irony",
		"Исторический детектив":     "det_history",
		"Классический детектив":     "det_classic",
		"Криминальный детектив":     "det_crime",
		"Крутой детектив":           "det_hard",
		"Политический детектив":     "det_political",
		"Полицейский детектив":      "det_police",
		"Про маньяков":              "det_maniac",
		"Советский детектив":        "det_su",
		"Триллер":                   "thriller",
		"Шпионский детектив":        "det_espionage",
	},
	"Детская литература": {
		"Детская литература: прочее":         "children",
		"Детская образовательная литература": "child_education",
		"Зарубежная литература для детей":    "foreign_children",
		"Классическая детская литература":    "child_classical",
		"Народные сказки":                    "folk_tale",
		"Сказки зарубежных писателей":        "child_tale_foreign_writers",
		"Сказки отечественных писателей":     "child_tale_russian_writers",
		"Детская проза: приключения":         "child_adv",
		"Детская фантастика":                 "child_sf",
		"Стихи для детей и подростков":       "child_verse",
	},
	"Документальная литература": {
		"Биографии и мемуары":       "nonf_biography",
		"Военная документалистика":  "nonf_military",
		"Документальная литература": "nonfiction",
		"Публицистика":              "nonf_publicism",
	},
	"Дом и семья": {
		"Боевые искусства, спорт":  "home_sport",
		"Домашние животные":        "home_pets",
		"Здоровье":                 "home_health",
		"Кулинария":                "home_cooking",
		"Педагогика, воспитание":   "sci_pedagogy",
		"Популярная психология":    "sci_psychology_popular",
		"Семейные отношения, секс": "home_sex",
		"Хобби и ремесла":          "home_crafts",
	},
	"Искусство и Культура": {
		"Искусство и Дизайн": "design",
		"Кино":               "cine",
		"Музыка":             "music",
		"Культурология":      "sci_culture",
	},
	"Компьютеры и Интернет": {
		"Интернет и Сети":         "comp_www",
		"Программирование":        "comp_db",
		"Компьютерная литература": "computers",
	},
	"Любовные романы": {
		"Исторические любовные романы":  "love_history",
		"Короткие любовные романы":      "love_short",
		"Любовное фэнтези":              "love_sf",
		"Остросюжетные любовные романы": "love_detective",
		"Современные любовные романы":   "love_contemporary",
		"Эротика":                       "love_erotica",
	},
	"Наука и Образование": {
		"История":           "sci_history",
		"Психология":        "sci_psychology",
		"Философия":         "sci_philosophy",
		"Математика":        "sci_math",
		"Физика":            "sci_phys",
		"Литературоведение": "sci_philology",
		"Языкознание":       "sci_linguistic",
		"Политика":          "sci_politics",
	},
	"Поэзия": {
		"Поэзия":               "poetry",
		"Классическая поэзия":  "poetry_classical",
		"Юмористические стихи": "humor_verse",
	},
	"Приключения": {
		"Вестерн":                  "adv_indian",
		"Исторические приключения": "adv_history",
		"Морские приключения":      "adv_maritime",
		"Приключения":              "adventure",
		"Природа и животные":       "adv_animal",
		"Путешествия и география":  "adv_geo",
	},
	"Проза": {
		"Историческая проза": "prose_history",
		"Классическая проза": "prose_classic",
		"Проза о войне":      "prose_military",
		"Современная проза":  "prose_contemporary",
		"Русская классика":   "prose_rus_classic",
		"Советская классика": "prose_su_classics",
	},
	"Религия и Эзотерика": {
		"Религия":               "religion",
		"Православие":           "religion_orthodoxy",
		"Эзотерика":             "religion_esoterics",
		"Самосовершенствование": "religion_self",
	},
	"Фантастика": {
		"Альтернативная история":    "sf_history",
		"Боевая фантастика":         "sf_action",
		"Бояръ-аниме":               "boyar_anime",
		"Героическая фантастика":    "sf_heroic",
		"Городское фэнтези":         "sf_fantasy_city",
		"Киберпанк":                 "sf_cyberpunk",
		"Космическая фантастика":    "sf_space",
		"ЛитРПГ":                    "sf_litrpg",
		"Мистика":                   "sf_mystic",
		"Научная фантастика":        "sf",
		"Попаданцы":                 "popadancy",
		"Постапокалипсис":           "sf_postapocalyptic",
		"Социальная фантастика":     "sf_social",
		"Стимпанк":                  "sf_stimpank",
		"Тёмное фэнтези":            "dark_fantasy",
		"Ужасы":                     "sf_horror",
		"Фэнтези":                   "sf_fantasy",
		"Эпическая фантастика":      "sf_epic",
		"Юмористическая фантастика": "sf_humor",
	},
	"Юмор": {
		"Анекдоты":             "humor_anecdote",
		"Юмор":                 "humor",
		"Юмористическая проза": "humor_prose",
	},
}

// defaultFlibustaCode is used for genres that match no group or subgenre.
const defaultFlibustaCode = "sf"

// audiobooGenres maps genre names to audioboo category slugs. The last block
// maps book catalogue groups onto the closest audioboo category.
var audiobooGenres = map[string]string{
	"Альтернативная история":    "altist",
	"Античность":                "antichnost",
	"Аудиоспектакль":            "audiospektakl",
	"Бизнес":                    "biz",
	"Биография":                 "biogr",
	"Боевик":                    "boevik",
	"Война":                     "voina",
	"Вселенная метро 2033":      "metrovsel",
	"Детектив":                  "didiktiva",
	"Детективы":                 "didiktiva",
	"Детская литература":        "detsklit",
	"Детская":                   "detsklit",
	"Драма":                     "drama",
	"Интервью":                  "interviu",
	"История":                   "istoria",
	"Классика":                  "klassika",
	"Лекция":                    "lekcia",
	"ЛФФР":                      "lffr",
	"Мемуары":                   "memuari",
	"Медицина":                  "medicina",
	"Мистика":                   "mistic",
	"Новелла":                   "novella",
	"Повесть":                   "povest",
	"Попаданцы":                 "popadanci",
	"Познавательная литература": "poznaem",
	"Постапокалипсис":           "postapakalipsis",
	"Поэзия":                    "poezia",
	"Притча":                    "pritch",
	"Приключения":               "prikluchenia",
	"Проза":                     "proza",
	"Психология":                "psihologia",
	"Публицистика":              "publicictika",
	"Ранобэ":                    "ranobe",
	"Религия":                   "rellign",
	"Роман":                     "roman",
	"Сказка":                    "skazka",
	"Стихи":                     "ssstihi",
	"Триллер":                   "triller",
	"Трэш":                      "tresh",
	"Ужасы":                     "ugas",
	"Учебник":                   "uchebnik",
	"Фантастика":                "fantastika",
	"Философия":                 "filosophi",
	"Фэнтези":                   "fenezi",
	"Хоррор":                    "horror",
	"Эзотерика":                 "ezoterika",
	"Эротика":                   "erotika",
	"Этногенез":                 "entogenez",
	"Юмор":                      "umor",
	"LitRPG":                    "litrpg",
	"ЛитРПГ":                    "litrpg",
	"Warhammer 40000":           "warhammer-40000",
	"S.T.A.L.K.E.R.":            "stalker",

	"Детективы и Триллеры":      "didiktiva",
	"Любовные романы":           "roman",
	"Наука и Образование":       "poznaem",
	"Дом и семья":               "psihologia",
	"Компьютеры и Интернет":     "uchebnik",
	"Религия и Эзотерика":       "rellign",
	"Искусство и Культура":      "klassika",
	"Документальная литература": "biogr",
	"Поэзия и Юмор":             "poezia",
}

// audiobooVocabulary is the uniform fallback for audiobook genre picks.
var audiobooVocabulary = []string{
	"Фантастика", "Фэнтези", "Детектив", "Ужасы", "Юмор", "ЛитРПГ", "Попаданцы",
	"Постапокалипсис", "Классика", "Мистика", "Приключения", "Проза", "Триллер",
	"Боевик", "История", "Биография", "Драма", "Сказка", "Роман", "Психология",
	"Поэзия", "Философия", "Альтернативная история",
}

// movieGenres is the uniform fallback for movie genre picks.
var movieGenres = []string{
	"Боевик", "Комедия", "Драма", "Фантастика", "Триллер", "Ужасы", "Приключения",
	"Детектив", "Мелодрама", "Криминал", "Фэнтези", "Военный", "Исторический",
}

// BookGenres returns the top-level catalogue groups, sorted.
func BookGenres() []string {
	groups := make([]string, 0, len(flibustaGenres))
	for g := range flibustaGenres {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// AudiobookGenres returns the audiobook genre vocabulary.
func AudiobookGenres() []string {
	return append([]string(nil), audiobooVocabulary...)
}

// MovieGenres returns the movie genre vocabulary.
func MovieGenres() []string {
	return append([]string(nil), movieGenres...)
}

// pickWeighted draws a genre proportionally to its weight. Non-positive
// weights are ignored; with none left the draw is uniform over vocabulary.
// float returns a value in [0, 1) and intn a value in [0, n).
func pickWeighted(weights map[string]float64, vocabulary []string, float func() float64, intn func(int) int) string {
	names := make([]string, 0, len(weights))
	var total float64
	for name, w := range weights {
		if w > 0 && strings.TrimSpace(name) != "" {
			names = append(names, name)
			total += w
		}
	}

	if len(names) == 0 {
		if len(vocabulary) == 0 {
			return ""
		}
		return vocabulary[intn(len(vocabulary))]
	}

	// Map iteration order is random; sort so a seeded source is reproducible.
	sort.Strings(names)
	r := float() * total
	for _, name := range names {
		r -= weights[name]
		if r < 0 {
			return name
		}
	}
	return names[len(names)-1]
}

// flibustaCode resolves a genre to a catalogue code. Subgenres map directly;
// a group name yields a random subgenre of that group.
func flibustaCode(genre string, intn func(int) int) string {
	for _, group := range sortedKeys(flibustaGenres) {
		if code, ok := flibustaGenres[group][genre]; ok {
			return code
		}
	}
	if sub, ok := flibustaGenres[genre]; ok {
		names := sortedKeys(sub)
		return sub[names[intn(len(names))]]
	}
	return defaultFlibustaCode
}

// flibustaSearchTerms returns keyword-search terms for a genre: the genre
// itself and, for a group, up to three of its subgenre names.
func flibustaSearchTerms(genre string) []string {
	terms := []string{genre}
	if sub, ok := flibustaGenres[genre]; ok {
		for _, name := range sortedKeys(sub) {
			if name != genre && !strings.Contains(name, ":") {
				terms = append(terms, name)
			}
			if len(terms) == 4 {
				break
			}
		}
	}
	return terms
}

// audiobooSlug looks up a genre's category slug, ignoring case.
func audiobooSlug(genre string) (string, bool) {
	if slug, ok := audiobooGenres[genre]; ok {
		return slug, true
	}
	for name, slug := range audiobooGenres {
		if strings.EqualFold(name, genre) {
			return slug, true
		}
	}
	return "", false
}

// audiobooSearchTerms returns DLE search terms for a genre: the genre itself
// and its lowercase form when that differs.
func audiobooSearchTerms(genre string) []string {
	terms := []string{genre}
	if lower := strings.ToLower(genre); lower != genre {
		terms = append(terms, lower)
	}
	return terms
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
