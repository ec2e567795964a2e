package validator

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// Coerce converts a cell to a number the way a loosely typed spreadsheet
// grader would: absent and empty text are 0, booleans are 1 or 0, and text
// is parsed as a decimal float after trimming surrounding whitespace.
// It reports false when the cell cannot be read as a number.
func Coerce(v models.CellValue) (float64, bool) {
	switch v.Kind {
	case models.KindAbsent:
		return 0, true
	case models.KindNumber:
		return v.Num, true
	case models.KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case models.KindText:
		if v.Text == "" {
			return 0, true
		}
		return parseDecimal(v.Text)
	default:
		return 0, false
	}
}

// parseDecimal parses text as a decimal float literal. It accepts signs,
// exponents, inf/infinity/nan and single underscores between digits, and
// rejects hexadecimal forms. Decimal digits of any script count as their
// ASCII value.
func parseDecimal(s string) (float64, bool) {
	s = toASCIIDigits(strings.TrimFunc(s, isSpace))
	if s == "" {
		return 0, false
	}

	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 {
		return 0, false
	}
	if strings.EqualFold(body, "nan") {
		return math.NaN(), true
	}
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		return 0, false
	}

	if strings.Contains(s, "_") {
		cleaned, ok := stripDigitSeparators(s)
		if !ok {
			return 0, false
		}
		s = cleaned
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals still have a value (±Inf or 0).
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// isSpace matches unicode.IsSpace plus the ASCII separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// toASCIIDigits rewrites non-ASCII decimal digits (Unicode category Nd) to
// '0'..'9'. Other runes are kept as they are.
func toASCIIDigits(s string) string {
	for _, r := range s {
		if r >= utf8.RuneSelf && unicode.IsDigit(r) {
			return strings.Map(func(r rune) rune {
				if r < utf8.RuneSelf {
					return r
				}
				if d, ok := digitValue(r); ok {
					return '0' + rune(d)
				}
				return r
			}, s)
		}
	}
	return s
}

// digitValue returns the value of a decimal digit. Nd digits come in
// contiguous runs of ten starting at zero, so the offset into the range
// table gives the value.
func digitValue(r rune) (int, bool) {
	for _, rng := range unicode.Nd.R16 {
		lo, hi, stride := rune(rng.Lo), rune(rng.Hi), rune(rng.Stride)
		if r >= lo && r <= hi && (r-lo)%stride == 0 {
			return int((r-lo)/stride) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		lo, hi, stride := rune(rng.Lo), rune(rng.Hi), rune(rng.Stride)
		if r >= lo && r <= hi && (r-lo)%stride == 0 {
			return int((r-lo)/stride) % 10, true
		}
	}
	return 0, false
}

// stripDigitSeparators removes underscores that sit between two digits.
func stripDigitSeparators(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
