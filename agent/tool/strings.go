package tool

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const NamespaceString = "string_tools"

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern   = regexp.MustCompile(`^\+?1?-?\.?\s?\(?(\d{3})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})$`)
	urlPattern     = regexp.MustCompile(`^https?://[-\w.]+(?::\d+)?(?:/[\w/_.]*(?:\?[\w&=%.]*)?(?:#\w*)?)?$`)
	errOutOfRange  = errors.New("position out of range")
	errBadInterval = errors.New("invalid start or end position")
)

func LoadStringTools() (*Namespace, error) {
	ns := NewNamespace(NamespaceString)
	if err := ns.AddAll(stringFunctions()...); err != nil {
		return nil, err
	}
	return ns, nil
}

func stringFunctions() []Function {
	text1 := Fixed("text")
	s1 := Fixed("s")

	return []Function{
		// Counting
		{Name: "count_vowels", Description: "Count the number of vowels in text.", Signature: text1, Call: textFn(countIn("aeiouAEIOU"))},
		{Name: "count_consonants", Description: "Count the number of consonants in text.", Signature: text1, Call: textFn(countIn("bcdfghjklmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ"))},
		{Name: "count_letters", Description: "Count the number of letters in text.", Signature: text1, Call: textFn(countWhere(unicode.IsLetter))},
		{Name: "count_digits", Description: "Count the number of digits in text.", Signature: text1, Call: textFn(countWhere(unicode.IsDigit))},
		{Name: "count_words", Description: "Count the number of words in text.", Signature: text1, Call: textFn(func(s string) any {
			return len(strings.Fields(s))
		})},
		{Name: "count_sentences", Description: "Count the number of sentences in text.", Signature: text1, Call: textFn(countIn(".!?"))},
		{Name: "count_paragraphs", Description: "Count the number of paragraphs in text.", Signature: text1, Call: textFn(func(s string) any {
			n := 0
			for _, p := range strings.Split(s, "\n\n") {
				if strings.TrimSpace(p) != "" {
					n++
				}
			}
			return n
		})},
		{Name: "count_characters", Description: "Count total number of characters including spaces.", Signature: text1, Call: textFn(func(s string) any {
			return utf8.RuneCountInString(s)
		})},
		{Name: "count_characters_no_spaces", Description: "Count characters excluding spaces.", Signature: text1, Call: textFn(func(s string) any {
			return utf8.RuneCountInString(strings.ReplaceAll(s, " ", ""))
		})},
		{Name: "count_specific_char", Description: "Count occurrences of a specific character.", Signature: Fixed("text", "char"), Call: textPair(func(s, c string) any {
			if s == "" {
				return 0
			}
			return strings.Count(s, c)
		})},
		{Name: "count_uppercase_letters", Description: "Count uppercase letters in text.", Signature: text1, Call: textFn(countWhere(unicode.IsUpper))},
		{Name: "count_lowercase_letters", Description: "Count lowercase letters in text.", Signature: text1, Call: textFn(countWhere(unicode.IsLower))},
		{Name: "count_punctuation", Description: "Count punctuation marks in text.", Signature: text1, Call: textFn(countIn(asciiPunctuation))},
		{Name: "count_whitespace", Description: "Count whitespace characters in text.", Signature: text1, Call: textFn(countWhere(unicode.IsSpace))},

		// Case conversion
		{Name: "uppercase", Description: "Convert string to uppercase.", Signature: s1, Call: textFn(func(s string) any { return strings.ToUpper(s) })},
		{Name: "lowercase", Description: "Convert string to lowercase.", Signature: s1, Call: textFn(func(s string) any { return strings.ToLower(s) })},
		{Name: "capitalize_first", Description: "Capitalize only the first character.", Signature: s1, Call: textFn(func(s string) any { return capitalize(s) })},
		{Name: "capitalize_words", Description: "Capitalize the first letter of each word.", Signature: s1, Call: textFn(func(s string) any { return titleCase(s) })},
		{Name: "swap_case", Description: "Swap the case of all letters.", Signature: s1, Call: textFn(func(s string) any {
			return strings.Map(func(r rune) rune {
				if unicode.IsUpper(r) {
					return unicode.ToLower(r)
				}
				return unicode.ToUpper(r)
			}, s)
		})},
		{Name: "camel_case", Description: "Convert to camelCase.", Signature: s1, Call: textFn(func(s string) any {
			words := strings.Fields(s)
			if len(words) == 0 {
				return s
			}
			var b strings.Builder
			b.WriteString(strings.ToLower(words[0]))
			for _, w := range words[1:] {
				b.WriteString(capitalize(w))
			}
			return b.String()
		})},
		{Name: "pascal_case", Description: "Convert to PascalCase.", Signature: s1, Call: textFn(func(s string) any {
			var b strings.Builder
			for _, w := range strings.Fields(s) {
				b.WriteString(capitalize(w))
			}
			return b.String()
		})},
		{Name: "snake_case", Description: "Convert to snake_case.", Signature: s1, Call: textFn(func(s string) any {
			return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_"))
		})},
		{Name: "kebab_case", Description: "Convert to kebab-case.", Signature: s1, Call: textFn(func(s string) any {
			return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "-"))
		})},

		// Manipulation
		{Name: "reverse_string", Description: "Reverse a string.", Signature: s1, Call: textFn(func(s string) any { return reverse(s) })},
		{Name: "reverse_words", Description: "Reverse the order of words in a string.", Signature: s1, Call: textFn(func(s string) any {
			words := strings.Fields(s)
			for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
				words[i], words[j] = words[j], words[i]
			}
			return strings.Join(words, " ")
		})},
		{Name: "remove_spaces", Description: "Remove all spaces from string.", Signature: s1, Call: textFn(func(s string) any { return strings.ReplaceAll(s, " ", "") })},
		{Name: "remove_whitespace", Description: "Remove all whitespace characters from string.", Signature: s1, Call: textFn(func(s string) any { return whitespaceRun.ReplaceAllString(s, "") })},
		{Name: "trim_whitespace", Description: "Remove leading and trailing whitespace.", Signature: s1, Call: textFn(func(s string) any { return strings.TrimSpace(s) })},
		{Name: "compress_whitespace", Description: "Replace multiple whitespace characters with single space.", Signature: s1, Call: textFn(func(s string) any {
			return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
		})},
		{Name: "remove_punctuation", Description: "Remove all punctuation from string.", Signature: s1, Call: textFn(func(s string) any {
			return dropWhere(s, func(r rune) bool { return strings.ContainsRune(asciiPunctuation, r) })
		})},
		{Name: "remove_digits", Description: "Remove all digits from string.", Signature: s1, Call: textFn(func(s string) any { return dropWhere(s, unicode.IsDigit) })},
		{Name: "remove_letters", Description: "Remove all letters from string.", Signature: s1, Call: textFn(func(s string) any { return dropWhere(s, unicode.IsLetter) })},
		{Name: "keep_only_letters", Description: "Keep only letters in string.", Signature: s1, Call: textFn(func(s string) any { return keepWhere(s, unicode.IsLetter) })},
		{Name: "keep_only_digits", Description: "Keep only digits in string.", Signature: s1, Call: textFn(func(s string) any { return keepWhere(s, unicode.IsDigit) })},
		{Name: "keep_only_alphanumeric", Description: "Keep only letters and digits.", Signature: s1, Call: textFn(func(s string) any { return keepWhere(s, isAlnum) })},

		// Analysis
		{Name: "is_palindrome", Description: "Check if string is a palindrome.", Signature: s1, Call: textFn(func(s string) any {
			cleaned := strings.ToLower(keepWhere(s, isAlnum))
			return cleaned == reverse(cleaned)
		})},
		{Name: "is_anagram", Description: "Check if two strings are anagrams.", Signature: Fixed("s1", "s2"), Call: textPair(func(a, b string) any {
			return sortedLetters(a) == sortedLetters(b)
		})},
		{Name: "is_all_uppercase", Description: "Check if all letters in string are uppercase.", Signature: s1, Call: textFn(func(s string) any {
			return hasCased(s) && !strings.ContainsFunc(s, unicode.IsLower)
		})},
		{Name: "is_all_lowercase", Description: "Check if all letters in string are lowercase.", Signature: s1, Call: textFn(func(s string) any {
			return hasCased(s) && !strings.ContainsFunc(s, unicode.IsUpper)
		})},
		{Name: "is_title_case", Description: "Check if string is in title case.", Signature: s1, Call: textFn(func(s string) any { return hasCased(s) && titleCase(s) == s })},
		{Name: "is_alphanumeric", Description: "Check if string contains only letters and digits.", Signature: s1, Call: textFn(func(s string) any { return allWhere(s, isAlnum) })},
		{Name: "is_alphabetic", Description: "Check if string contains only letters.", Signature: s1, Call: textFn(func(s string) any { return allWhere(s, unicode.IsLetter) })},
		{Name: "is_numeric", Description: "Check if string contains only digits.", Signature: s1, Call: textFn(func(s string) any { return allWhere(s, unicode.IsDigit) })},
		{Name: "contains_substring", Description: "Check if text contains substring.", Signature: Fixed("text", "substring"), Call: textPair(func(s, sub string) any { return strings.Contains(s, sub) })},
		{Name: "starts_with", Description: "Check if text starts with prefix.", Signature: Fixed("text", "prefix"), Call: textPair(func(s, p string) any { return strings.HasPrefix(s, p) })},
		{Name: "ends_with", Description: "Check if text ends with suffix.", Signature: Fixed("text", "suffix"), Call: textPair(func(s, p string) any { return strings.HasSuffix(s, p) })},

		// Search and replace
		{Name: "find_substring", Description: "Find first occurrence of substring (returns index or -1).", Signature: Fixed("text", "substring"), Call: textPair(func(s, sub string) any {
			return runeIndex(s, sub, 0)
		})},
		{Name: "find_all_substrings", Description: "Find all occurrences of substring (returns list of indices).", Signature: Fixed("text", "substring"), Call: textPair(findAll)},
		{Name: "replace_substring", Description: "Replace all occurrences of old substring with new.", Signature: Fixed("text", "old", "new"), Call: replaceN(-1)},
		{Name: "replace_first_occurrence", Description: "Replace only the first occurrence of old substring with new.", Signature: Fixed("text", "old", "new"), Call: replaceN(1)},
		{Name: "insert_at_position", Description: "Insert text at specified position.", Signature: Fixed("text", "position", "insert_text"), Call: insertAt},
		{Name: "remove_substring", Description: "Remove all occurrences of substring.", Signature: Fixed("text", "substring"), Call: textPair(func(s, sub string) any { return strings.ReplaceAll(s, sub, "") })},

		// Extraction
		{Name: "get_first_word", Description: "Get the first word from text.", Signature: text1, Call: textFn(func(s string) any {
			if words := strings.Fields(s); len(words) > 0 {
				return words[0]
			}
			return ""
		})},
		{Name: "get_last_word", Description: "Get the last word from text.", Signature: text1, Call: textFn(func(s string) any {
			if words := strings.Fields(s); len(words) > 0 {
				return words[len(words)-1]
			}
			return ""
		})},
		{Name: "get_word_at_position", Description: "Get word at specified position (0-indexed).", Signature: Fixed("text", "position"), Call: wordAt},
		{Name: "get_substring", Description: "Get substring from start to end position.", Signature: Fixed("text", "start", "end"), Call: substring},
		{Name: "get_characters_at_positions", Description: "Get characters at specified positions.", Signature: Fixed("text", "positions"), Call: charactersAt},

		// Formatting
		{Name: "repeat_string", Description: "Repeat string specified number of times.", Signature: Fixed("text", "times"), Call: repeat},
		{Name: "center_string", Description: "Center string within specified width.", Signature: Fixed("text", "width").WithDefault("fill_char", " "), Call: justify(center)},
		{Name: "left_justify", Description: "Left justify string within specified width.", Signature: Fixed("text", "width").WithDefault("fill_char", " "), Call: justify(padRight)},
		{Name: "right_justify", Description: "Right justify string within specified width.", Signature: Fixed("text", "width").WithDefault("fill_char", " "), Call: justify(padLeft)},
		{Name: "pad_left", Description: "Pad string on the left to specified width.", Signature: Fixed("text", "width").WithDefault("pad_char", "0"), Call: justify(padLeft)},
		{Name: "pad_right", Description: "Pad string on the right to specified width.", Signature: Fixed("text", "width").WithDefault("pad_char", "0"), Call: justify(padRight)},

		// Word analysis
		{Name: "longest_word", Description: "Find the longest word in text.", Signature: text1, Call: textFn(func(s string) any {
			return pickWord(strings.Fields(s), func(a, b int) bool { return a > b })
		})},
		{Name: "shortest_word", Description: "Find the shortest word in text.", Signature: text1, Call: textFn(func(s string) any {
			return pickWord(strings.Fields(s), func(a, b int) bool { return a < b })
		})},
		{Name: "average_word_length", Description: "Calculate average word length.", Signature: text1, Call: textFn(func(s string) any {
			words := strings.Fields(s)
			if len(words) == 0 {
				return 0.0
			}
			total := 0
			for _, w := range words {
				total += utf8.RuneCountInString(w)
			}
			return float64(total) / float64(len(words))
		})},
		{Name: "word_frequency", Description: "Count frequency of each word (returns dictionary).", Signature: text1, Call: textFn(func(s string) any {
			freq, _ := wordFrequency(s)
			return freq
		})},
		{Name: "most_frequent_word", Description: "Find the most frequently occurring word.", Signature: text1, Call: textFn(func(s string) any {
			return frequentWord(s, func(a, b int) bool { return a > b })
		})},
		{Name: "least_frequent_word", Description: "Find the least frequently occurring word.", Signature: text1, Call: textFn(func(s string) any {
			return frequentWord(s, func(a, b int) bool { return a < b })
		})},
		{Name: "unique_words", Description: "Get list of unique words.", Signature: text1, Call: textFn(func(s string) any {
			_, order := wordFrequency(s)
			return order
		})},
		{Name: "count_unique_words", Description: "Count number of unique words.", Signature: text1, Call: textFn(func(s string) any {
			_, order := wordFrequency(s)
			return len(order)
		})},

		// Validation
		{Name: "is_email", Description: "Check if string is a valid email format.", Signature: text1, Call: textFn(func(s string) any { return emailPattern.MatchString(s) })},
		{Name: "is_phone_number", Description: "Check if string is a valid phone number format.", Signature: text1, Call: textFn(func(s string) any {
			return phonePattern.MatchString(strings.TrimSpace(s))
		})},
		{Name: "is_url", Description: "Check if string is a valid URL format.", Signature: text1, Call: textFn(func(s string) any { return urlPattern.MatchString(s) })},
		{Name: "contains_only_ascii", Description: "Check if string contains only ASCII characters.", Signature: text1, Call: textFn(func(s string) any {
			return !strings.ContainsFunc(s, func(r rune) bool { return r > unicode.MaxASCII })
		})},
		{Name: "is_blank", Description: "Check if string is empty or contains only whitespace.", Signature: text1, Call: textFn(func(s string) any {
			return strings.TrimSpace(s) == ""
		})},
	}
}

func countIn(set string) func(string) any {
	return countWhere(func(r rune) bool { return strings.ContainsRune(set, r) })
}

func countWhere(pred func(rune) bool) func(string) any {
	return func(s string) any {
		n := 0
		for _, r := range s {
			if pred(r) {
				n++
			}
		}
		return n
	}
}

func keepWhere(s string, pred func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if pred(r) {
			return r
		}
		return -1
	}, s)
}

func dropWhere(s string, pred func(rune) bool) string {
	return keepWhere(s, func(r rune) bool { return !pred(r) })
}

// allWhere is false for the empty string.
func allWhere(s string, pred func(rune) bool) bool {
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool { return !pred(r) })
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasCased(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return unicode.IsUpper(r) || unicode.IsLower(r) })
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func sortedLetters(s string) string {
	runes := []rune(strings.ToLower(keepWhere(s, unicode.IsLetter)))
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

// runeIndex returns the character index of sub in s at or after character
// offset from, or -1.
func runeIndex(s, sub string, from int) int {
	runes := []rune(s)
	if from > len(runes) {
		return -1
	}
	i := strings.Index(string(runes[from:]), sub)
	if i < 0 {
		return -1
	}
	return from + utf8.RuneCountInString(string(runes[from:])[:i])
}

func findAll(s, sub string) any {
	out := []int{}
	for start := 0; ; {
		i := runeIndex(s, sub, start)
		if i < 0 {
			return out
		}
		out = append(out, i)
		start = i + 1
	}
}

func replaceN(n int) Func {
	return func(args []any) (any, error) {
		ss, err := texts(args, 0, 1, 2)
		if err != nil {
			return nil, err
		}
		return strings.Replace(ss[0], ss[1], ss[2], n), nil
	}
}

func insertAt(args []any) (any, error) {
	s, err := text(args, 0)
	if err != nil {
		return nil, err
	}
	pos, err := integer(args, 1)
	if err != nil {
		return nil, err
	}
	ins, err := text(args, 2)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if pos < 0 || pos > len(runes) {
		return nil, errOutOfRange
	}
	return string(runes[:pos]) + ins + string(runes[pos:]), nil
}

func wordAt(args []any) (any, error) {
	s, err := text(args, 0)
	if err != nil {
		return nil, err
	}
	pos, err := integer(args, 1)
	if err != nil {
		return nil, err
	}
	words := strings.Fields(s)
	if pos < 0 || pos >= len(words) {
		return nil, errOutOfRange
	}
	return words[pos], nil
}

func substring(args []any) (any, error) {
	s, err := text(args, 0)
	if err != nil {
		return nil, err
	}
	start, err := integer(args, 1)
	if err != nil {
		return nil, err
	}
	end, err := integer(args, 2)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if start < 0 || end > len(runes) || start > end {
		return nil, errBadInterval
	}
	return string(runes[start:end]), nil
}

func charactersAt(args []any) (any, error) {
	s, err := text(args, 0)
	if err != nil {
		return nil, err
	}
	raw, err := list(args, 1)
	if err != nil {
		return nil, err
	}
	positions, err := integers(raw)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	var b strings.Builder
	for _, p := range positions {
		if p >= 0 && p < len(runes) {
			b.WriteRune(runes[p])
		}
	}
	return b.String(), nil
}

func repeat(args []any) (any, error) {
	s, err := text(args, 0)
	if err != nil {
		return nil, err
	}
	times, err := integer(args, 1)
	if err != nil {
		return nil, err
	}
	if times < 0 {
		return nil, errors.New("times must be non-negative")
	}
	return strings.Repeat(s, times), nil
}

func justify(fn func(s string, width int, fill rune) string) Func {
	return func(args []any) (any, error) {
		s, err := text(args, 0)
		if err != nil {
			return nil, err
		}
		width, err := integer(args, 1)
		if err != nil {
			return nil, err
		}
		fill, err := text(args, 2)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(fill) != 1 {
			return nil, errors.New("the fill character must be exactly one character long")
		}
		r, _ := utf8.DecodeRuneInString(fill)
		return fn(s, width, r), nil
	}
}

func padLeft(s string, width int, fill rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return strings.Repeat(string(fill), n) + s
}

func padRight(s string, width int, fill rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(string(fill), n)
}

// center puts the extra fill character on the right when the padding is odd
// and the width is even, on the left otherwise.
func center(s string, width int, fill rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	left := n / 2
	if n%2 == 1 && width%2 == 1 {
		left++
	}
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), n-left)
}

// pickWord returns the first word whose length wins under better.
func pickWord(words []string, better func(a, b int) bool) string {
	if len(words) == 0 {
		return ""
	}
	best := words[0]
	for _, w := range words[1:] {
		if better(utf8.RuneCountInString(w), utf8.RuneCountInString(best)) {
			best = w
		}
	}
	return best
}

// wordFrequency lower-cases words and strips surrounding punctuation. The
// second return value lists distinct words in first-seen order.
func wordFrequency(s string) (map[string]int, []string) {
	freq := map[string]int{}
	order := []string{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, asciiPunctuation)
		if _, seen := freq[w]; !seen {
			order = append(order, w)
		}
		freq[w]++
	}
	return freq, order
}

func frequentWord(s string, better func(a, b int) bool) string {
	freq, order := wordFrequency(s)
	if len(order) == 0 {
		return ""
	}
	best := order[0]
	for _, w := range order[1:] {
		if better(freq[w], freq[best]) {
			best = w
		}
	}
	return best
}
