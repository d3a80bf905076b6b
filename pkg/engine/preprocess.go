package engine

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     Keywords then never collide with user-defined variables.
//
//  2. Kebab-case to underscore: cell-size -> cell_size.
//     zygomys reads a hyphen inside an identifier as the subtraction
//     operator.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// String literals and comment bodies are copied unchanged.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			i = copyQuoted(&result, b, i, '"', true)

		case b[i] == '`':
			i = copyQuoted(&result, b, i, '`', false)

		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// copyQuoted appends the literal starting at b[i] up to and including its
// closing quote and returns the index after it.
func copyQuoted(dst *[]byte, b []byte, i int, quote byte, escapes bool) int {
	*dst = append(*dst, b[i])
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			*dst = append(*dst, b[i], b[i+1])
			i += 2
			continue
		}
		*dst = append(*dst, b[i])
		i++
	}
	if i < len(b) {
		*dst = append(*dst, b[i])
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
