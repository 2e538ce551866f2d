package reconcile

import "strings"

// ValidRUT verifies a Chilean RUT such as "76.123.456-0" against its
// modulo 11 check digit.
func ValidRUT(rut string) bool {
	clean := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(rut))
	if len(clean) < 2 {
		return false
	}

	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	var expected byte
	switch r := 11 - sum%11; r {
	case 11:
		expected = '0'
	case 10:
		expected = 'K'
	default:
		expected = byte('0' + r)
	}
	return dv == expected
}

// FormatRUT renders a RUT as "12.345.678-5". Input that is not a RUT is
// returned unchanged.
func FormatRUT(rut string) string {
	clean := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(rut))
	if len(clean) < 2 {
		return rut
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	for _, c := range body {
		if c < '0' || c > '9' {
			return rut
		}
	}

	var b strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "-" + dv
}
