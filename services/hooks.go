package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"social-analytics/models"
)

// longFormThreshold is the rune count above which a post counts as long-form.
const longFormThreshold = 200

var (
	contrarianMarkers = []string{"unpopular opinion", "hot take", "wrong"}
	fomoMarkers       = []string{"sleeping on", "closing", "behind"}

	numberRegexp = regexp.MustCompile(`\d+%|\d+k|\d+ (?:days|weeks|hours|years)(?: ago)?`)
	storyRegexp  = regexp.MustCompile(`in \d{4}|years ago|last week|first time`)
)

// DetectHook classifies the opening style of a post. Rules are evaluated in
// order and the first match wins.
func DetectHook(text string) models.HookType {
	lower := strings.ToLower(text)

	if containsAny(lower, contrarianMarkers) {
		return models.HookContrarian
	}
	if hasNumberHook(lower) {
		return models.HookDataNumbers
	}
	if containsAny(lower, fomoMarkers) {
		return models.HookFOMO
	}
	if strings.Contains(lower, "?") {
		return models.HookQuestion
	}
	if storyRegexp.MatchString(lower) {
		return models.HookStory
	}
	return models.HookBoldStatement
}

// hasNumberHook matches figures like "40%", "10k" or "30 days". A duration
// followed by "ago" narrates the past and is left to the story rule.
func hasNumberHook(lower string) bool {
	for _, m := range numberRegexp.FindAllString(lower, -1) {
		if !strings.HasSuffix(m, " ago") {
			return true
		}
	}
	return false
}

// DetectContentType classifies a post by length. Threads are only visible to
// the API path.
func DetectContentType(text string) models.ContentType {
	if strings.TrimSpace(text) == "" {
		return models.ContentUnknown
	}
	if utf8.RuneCountInString(text) > longFormThreshold {
		return models.ContentLongForm
	}
	return models.ContentSinglePost
}
