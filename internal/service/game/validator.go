package game

import (
	"strings"
	"unicode/utf8"
)

const MAX_GUESS_LENGTH = 100

func IsCorrectGuess(guess, word string) bool {
	w := strings.TrimSpace(word)
	return w != "" && strings.EqualFold(strings.TrimSpace(guess), w)
}

// IsCloseGuess 精确命中不算"接近"；长度不超过 3 的词只接受精确命中
func IsCloseGuess(guess, word string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	w := strings.ToLower(strings.TrimSpace(word))

	if g == "" || w == "" || g == w {
		return false
	}

	wordLen := utf8.RuneCountInString(w)
	if wordLen <= 3 {
		return false
	}

	maxDistance := 2
	if wordLen <= 5 {
		maxDistance = 1
	}

	return LevenshteinDistance(g, w) <= maxDistance
}

// LevenshteinDistance 单行 DP，插入、删除、替换代价均为 1
func LevenshteinDistance(a, b string) int {
	if a == "" && b == "" {
		return 0
	}

	s := []rune(strings.ToLower(a))
	t := []rune(strings.ToLower(b))

	if len(s) == 0 {
		return len(t)
	}
	if len(t) == 0 {
		return len(s)
	}

	row := make([]int, len(t)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(s); i++ {
		prev := row[0]
		row[0] = i

		for j := 1; j <= len(t); j++ {
			cur := row[j]

			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}

			row[j] = min(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}

	return row[len(t)]
}

func IsValidGuess(guess string) bool {
	trimmed := strings.TrimSpace(guess)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MAX_GUESS_LENGTH
}
