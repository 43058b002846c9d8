package cli

import (
	"strings"

	"github.com/attend-io/attend/internal/usage"
)

// tokenize splits an input line into shell-style words. Double quotes
// group words and may appear inside a token, so due:"next week" binds
// the whole phrase to the key.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuote := false
	pending := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			pending = true
		case r == ' ' || r == '\t':
			if inQuote {
				current.WriteRune(r)
				break
			}
			if pending {
				tokens = append(tokens, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if inQuote {
		return nil, usage.Errorf("unterminated quote")
	}
	if pending {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// objectify separates tokens into positional arguments and keyword
// arguments. A token containing ":" or "=" becomes key and value;
// comma-separated values split into a list; repeated keys accumulate.
// Tokens without a delimiter, or with nothing before it, stay
// positional.
func objectify(tokens []string) (args []string, kwargs map[string][]string) {
	kwargs = make(map[string][]string)
	for _, tok := range tokens {
		idx := strings.IndexAny(tok, ":=")
		if idx <= 0 {
			args = append(args, tok)
			continue
		}
		key := tok[:idx]
		value := tok[idx+1:]
		if strings.Contains(value, ",") {
			for _, v := range strings.Split(value, ",") {
				kwargs[key] = append(kwargs[key], v)
			}
		} else {
			kwargs[key] = append(kwargs[key], value)
		}
	}
	return args, kwargs
}
