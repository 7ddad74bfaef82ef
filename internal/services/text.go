package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"blogapi/internal/models"

	"github.com/gosimple/slug"
)

const (
	wordsPerMinute  = 200
	fallbackSlug    = "article"
	maxTagsPerPost  = 10
	maxTagNameRunes = 50
	maxSlugAttempts = 5

	// articles.slug — VARCHAR(255), оставляем место под "-<ms>"
	maxArticleSlugLen = 200
	// tags.slug — VARCHAR(60)
	maxTagSlugLen = 60
)

// Slugify: нижний регистр, ASCII, слова через дефис. Пустой результат заменяется на "article".
func Slugify(title string) string {
	s := cutSlug(slug.Make(title), maxArticleSlugLen)
	if s == "" {
		return fallbackSlug
	}
	return s
}

// cutSlug укорачивает slug до max байт по границе дефиса.
// Транслитерация даёт несколько ASCII-букв на символ, поэтому длина заголовка длину slug не ограничивает.
func cutSlug(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	if i := strings.LastIndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	return strings.Trim(s, "-")
}

// ReadingTime — минуты чтения при 200 словах в минуту, не меньше одной.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// stampSlug добавляет к slug метку времени в миллисекундах.
func stampSlug(base string, ms int64) string {
	return base + "-" + strconv.FormatInt(ms, 10)
}

// NormalizeTags обрезает пробелы, выкидывает пустые и повторяющиеся (по slug) имена.
func NormalizeTags(names []string) []models.Tag {
	seen := make(map[string]struct{}, len(names))
	out := make([]models.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		s := cutSlug(slug.Make(name), maxTagSlugLen)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, models.Tag{Name: name, Slug: s})
	}
	return out
}

func validateTags(tags []models.Tag) string {
	if len(tags) > maxTagsPerPost {
		return "An article can have at most 10 tags"
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t.Name) > maxTagNameRunes {
			return "Tag names must be at most 50 characters"
		}
	}
	return ""
}
