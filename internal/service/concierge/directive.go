package concierge

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Directives is the model text split into what the guest sees and what the UI acts on.
type Directives struct {
	Text             string
	Options          []string
	PaymentRequested bool
}

const (
	tagDelimiter   = "///"
	payKeyword     = "PAY"
	optionsKeyword = "OPTIONS"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokPay
	tokOptionsHead
	tokDelimiter
)

type token struct {
	kind  tokenKind
	value string
}

// ParseDirectives strips the payment marker ("///PAY///") and option blocks
// ("///OPTIONS: a, b///") from raw model output. The last option block wins.
func ParseDirectives(raw string) Directives {
	var (
		out     strings.Builder
		block   strings.Builder
		inBlock bool
		result  Directives
	)

	closeBlock := func() {
		result.Options = splitLabels(block.String())
		block.Reset()
		inBlock = false
	}

	for _, tok := range lexDirectives(raw) {
		switch tok.kind {
		case tokPay:
			result.PaymentRequested = true
		case tokOptionsHead:
			if inBlock {
				closeBlock()
			}
			inBlock = true
		case tokDelimiter:
			if inBlock {
				closeBlock()
				continue
			}
			out.WriteString(tok.value)
		case tokText:
			if inBlock {
				block.WriteString(tok.value)
				continue
			}
			out.WriteString(tok.value)
		}
	}
	if inBlock {
		closeBlock()
	}

	result.Text = strings.TrimSpace(out.String())
	return result
}

func splitLabels(raw string) []string {
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// lexDirectives cuts raw into tokens. Every tag starts with "///"; in a longer run
// of slashes the tag binds to the slashes closest to its keyword.
func lexDirectives(raw string) []token {
	var tokens []token
	emitText := func(s string) {
		if s == "" {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].kind == tokText {
			tokens[n-1].value += s
			return
		}
		tokens = append(tokens, token{kind: tokText, value: s})
	}

	for i := 0; i < len(raw); {
		next := strings.Index(raw[i:], tagDelimiter)
		if next < 0 {
			emitText(raw[i:])
			break
		}
		emitText(raw[i : i+next])
		i += next

		run := 0
		for i+run < len(raw) && raw[i+run] == '/' {
			run++
		}

		matched := false
		for offset := 0; offset+len(tagDelimiter) <= run; offset++ {
			start := i + offset
			if n := matchPay(raw[start:]); n > 0 {
				emitText(raw[i:start])
				tokens = append(tokens, token{kind: tokPay, value: raw[start : start+n]})
				i = start + n
				matched = true
				break
			}
			if n := matchOptionsHead(raw[start:]); n > 0 {
				emitText(raw[i:start])
				tokens = append(tokens, token{kind: tokOptionsHead, value: raw[start : start+n]})
				i = start + n
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		tokens = append(tokens, token{kind: tokDelimiter, value: tagDelimiter})
		i += len(tagDelimiter)
	}
	return tokens
}

// matchPay returns the length of a "///PAY///" marker at the start of s, or 0.
func matchPay(s string) int {
	marker := tagDelimiter + payKeyword + tagDelimiter
	if len(s) >= len(marker) && strings.EqualFold(s[:len(marker)], marker) {
		return len(marker)
	}
	return 0
}

// matchOptionsHead returns the length of "///" ws* "OPTIONS" ws* ":" at the start of s, or 0.
func matchOptionsHead(s string) int {
	if !strings.HasPrefix(s, tagDelimiter) {
		return 0
	}
	pos := skipSpace(s, len(tagDelimiter))
	if len(s)-pos < len(optionsKeyword) || !strings.EqualFold(s[pos:pos+len(optionsKeyword)], optionsKeyword) {
		return 0
	}
	pos = skipSpace(s, pos+len(optionsKeyword))
	if pos >= len(s) || s[pos] != ':' {
		return 0
	}
	return pos + 1
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}
