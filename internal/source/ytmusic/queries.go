package ytmusic

// Discovery search terms by language. Hits for these seed queries
// reflect the catalog's own popularity ranking per language.
var langQueries = map[string][]string{
	"en": {"top hits", "popular songs", "best songs", "greatest hits", "hit songs"},
	"es": {"éxitos musicales", "canciones populares", "mejores canciones", "hits latinos"},
	"hi": {"bollywood hits", "hindi songs", "best hindi songs", "bollywood popular"},
	"ko": {"kpop hits", "인기 가요", "korean popular songs", "kpop best"},
	"ja": {"jpop hits", "日本の人気曲", "japanese popular songs"},
	"pt": {"músicas populares", "hits brasileiros", "melhores músicas"},
	"fr": {"chansons populaires", "hits français", "meilleures chansons"},
	"de": {"deutsche hits", "beliebte lieder", "beste deutsche songs"},
	"it": {"canzoni italiane", "hits italiani", "musica italiana"},
	"te": {"telugu hit songs", "telugu popular songs", "telugu melody songs"},
	"ta": {"tamil hit songs", "tamil popular songs", "tamil melody hits"},
}

var defaultQueries = []string{"top songs", "popular songs", "greatest hits", "best songs ever", "hit songs"}

// seedQueries returns the discovery queries for a language, falling
// back to the generic set for unknown or empty languages.
func seedQueries(language string) []string {
	if language != "" {
		if qs, ok := langQueries[language]; ok {
			return qs
		}
	}
	return defaultQueries
}

// yearRange expands an optional year window into individual years. A
// single bound yields just that year; no bounds yield one zero entry
// meaning "no year qualifier".
func yearRange(from, to int) []int {
	switch {
	case from > 0 && to > 0:
		years := make([]int, 0, to-from+1)
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
		return years
	case from > 0:
		return []int{from}
	case to > 0:
		return []int{to}
	default:
		return []int{0}
	}
}
