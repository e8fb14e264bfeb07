package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxChapterCandidate is exclusive. Larger numbers on a listing page are
// usually years or ids.
const MaxChapterCandidate = 2000

var chapterKeywordPattern = regexp.MustCompile(`(?i)(?:Chapter|Ch\.?|Episode)\s*(\d+)`)

// ParseCandidate reads a chapter number out of one element text.
func ParseCandidate(text string) (int, bool) {
	if match := chapterKeywordPattern.FindStringSubmatch(text); len(match) == 2 {
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		return number, true
	}

	trimmed := strings.TrimSpace(text)
	if !isAllDigits(trimmed) {
		return 0, false
	}
	number, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return number, true
}

func LatestChapter(texts []string) int {
	latest := 0
	for _, text := range texts {
		number, ok := ParseCandidate(text)
		if !ok || number >= MaxChapterCandidate {
			continue
		}
		if number > latest {
			latest = number
		}
	}
	return latest
}

func collectChapterTexts(dom DOM, selectors []string) []string {
	pool := make([]string, 0)
	for _, selector := range selectors {
		texts, err := dom.Texts(selector)
		if err != nil || len(texts) == 0 {
			continue
		}
		pool = append(pool, texts...)
	}
	return pool
}

func isAllDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
