package notify

import (
	"regexp"
	"strings"

	"github.com/gosuda/flowboard/internal/domain"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_-]+)`) //nolint:gochecknoglobals // compiled once

// ExtractMentions returns the lower-cased @tokens of content, deduplicated,
// in first-seen order.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		token := strings.ToLower(m[1])
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// mentionKeys returns the tokens a user can be mentioned by: the first word of
// their name and the local part of their email, both lower-cased.
func mentionKeys(u *domain.User) []string {
	var keys []string
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		keys = append(keys, strings.ToLower(fields[0]))
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		keys = append(keys, strings.ToLower(local))
	} else if !ok && u.Email != "" {
		keys = append(keys, strings.ToLower(u.Email))
	}
	return keys
}

// MentionedUsers returns the users matched by tokens, in users order. Each
// user appears at most once.
func MentionedUsers(tokens []string, users []*domain.User) []*domain.User {
	if len(tokens) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		want[t] = struct{}{}
	}

	var out []*domain.User
	for _, u := range users {
		for _, key := range mentionKeys(u) {
			if _, ok := want[key]; ok {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
