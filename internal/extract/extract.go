// Package extract pulls contact details out of free-text visitor messages.
// Everything here is a pure function of the input and the static stoplists,
// so re-applying a transcript always yields the same result.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	minNameRunes   = 2
	maxNameRunes   = 30
	maxNameWords   = 2
)

// phonePattern matches a candidate phone substring: an optional plus, then
// digits interleaved with the separators people actually type.
var phonePattern = regexp.MustCompile(`\+?[0-9][0-9 ()\-]*[0-9]`)

// stopwords are greetings, yes/no tokens and business-domain nouns that never
// form a personal name. Lowercase.
var stopwords = map[string]struct{}{
	// greetings
	"привет": {}, "здравствуйте": {}, "здравствуй": {}, "добрый": {},
	"день": {}, "вечер": {}, "утро": {}, "салем": {}, "сәлем": {},
	"сәлеметсізбе": {}, "hello": {}, "hi": {}, "hey": {},
	// yes / no
	"да": {}, "нет": {}, "ага": {}, "угу": {}, "yes": {}, "no": {},
	"ok": {}, "окей": {}, "хорошо": {}, "верно": {}, "правильно": {},
	"иә": {}, "жоқ": {},
	// business-domain nouns
	"цена": {}, "прайс": {}, "стоимость": {}, "товар": {}, "услуга": {},
	"услуги": {}, "заказ": {}, "доставка": {}, "компания": {},
	"менеджер": {}, "бот": {}, "сайт": {}, "телефон": {}, "номер": {},
	"спасибо": {}, "рахмет": {}, "thanks": {}, "thank": {},
}

// Phone scans text for a digit run of 10-15 characters, ignoring spaces,
// hyphens and parentheses. The returned value is the compacted run, keeping a
// leading plus when the visitor typed one. No normalization happens here;
// callers that need E.164 use platform/phone.
func Phone(text string) (string, bool) {
	raw, _, ok := findPhone(text)
	if !ok {
		return "", false
	}
	return raw, true
}

// findPhone returns the compacted phone, its byte offset in text, and whether
// a valid run was found.
func findPhone(text string) (string, int, bool) {
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		compact := stripSeparators(candidate)
		digits := strings.TrimPrefix(compact, "+")
		if len(digits) >= minPhoneDigits && len(digits) <= maxPhoneDigits {
			return compact, loc[0], true
		}
	}
	return "", 0, false
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, s)
}

// Name extracts a personal name from text. Rules: no digits, 2-30 runes,
// at most two words, no stoplisted word. When the text also contains a phone
// number, the candidate is the substring preceding the phone match, under the
// same rules.
func Name(text string) (string, bool) {
	candidate := text
	if _, idx, ok := findPhone(text); ok {
		candidate = text[:idx]
	}

	candidate = strings.Trim(candidate, " \t\n,.;:!?-")
	if candidate == "" {
		return "", false
	}

	for _, r := range candidate {
		if unicode.IsDigit(r) {
			return "", false
		}
	}

	runes := len([]rune(candidate))
	if runes < minNameRunes || runes > maxNameRunes {
		return "", false
	}

	words := strings.Fields(candidate)
	if len(words) == 0 || len(words) > maxNameWords {
		return "", false
	}

	for _, word := range words {
		normalized := strings.ToLower(strings.Trim(word, ",.;:!?"))
		if _, stopped := stopwords[normalized]; stopped {
			return "", false
		}
	}

	return candidate, true
}
