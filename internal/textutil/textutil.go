// Package textutil normalizes names, URLs and free text into the token
// form stored in the catalog database and compared during linking.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordSplit = regexp.MustCompile(`\W+`)
	urlSplit  = regexp.MustCompile(`[/:.?&=#_-]+`)
)

// Stopwords dropped from URL tokens, scheme and boilerplate bits.
var urlStopwords = map[string]struct{}{
	"http":  {},
	"https": {},
	"www":   {},
	"com":   {},
	"org":   {},
	"net":   {},
	"html":  {},
	"htm":   {},
	"php":   {},
	"index": {},
}

// Tokenize lowercases the input and splits it on non-word characters,
// dropping empty tokens.
func Tokenize(s string) []string {
	var tokens []string
	for _, token := range wordSplit.Split(strings.ToLower(s), -1) {
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

// TokenizeURL splits a URL into significant tokens, dropping scheme and
// boilerplate parts.
func TokenizeURL(rawURL string) []string {
	var tokens []string
	for _, token := range urlSplit.Split(strings.ToLower(rawURL), -1) {
		if token == "" {
			continue
		}
		if _, dropped := urlStopwords[token]; dropped {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// JoinTokens renders tokens the way the catalog tables store them.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
