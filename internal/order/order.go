// Package order parses and verifies track/disc order-numbering text of
// the form "nn/mm", as stored in TRCK and TPOS frames. Grounded on
// chirp/library/order.py.
package order

import (
	"fmt"
	"regexp"
)

var numberingRE = regexp.MustCompile(`^\s*(-?\d+)([^\d\-]+(-?\d+))?\s*$`)

var archivalRE = regexp.MustCompile(`^\d+/\d+$`)

// BadOrderError reports a malformed or invalid order-numbering string.
type BadOrderError struct {
	Msg string
}

func (e *BadOrderError) Error() string { return e.Msg }

func badOrder(format string, args ...any) error {
	return &BadOrderError{Msg: fmt.Sprintf(format, args...)}
}

// Decode parses an order-numbering string into (order number, total
// count). total is -1 if the string doesn't specify one.
func Decode(text string) (orderNum, totalNum int, err error) {
	m := numberingRE.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, badOrder("bad numbering %q", text)
	}
	n := atoi(m[1])
	if n <= 0 {
		return 0, 0, badOrder("bad numbering %q", text)
	}
	if m[3] == "" {
		return n, -1, nil
	}
	total := atoi(m[3])
	if n > total {
		return 0, 0, badOrder("bad numbering %q", text)
	}
	return n, total, nil
}

func atoi(s string) int {
	neg := false
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	n := 0
	for ; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n
}

// Encode renders (order number, total count) in the station's
// preferred "n" / "n/m" form. Pass totalNum -1 for an unknown total.
func Encode(orderNum, totalNum int) (string, error) {
	if orderNum <= 0 {
		return "", badOrder("bad order number %d", orderNum)
	}
	if totalNum < 0 {
		return fmt.Sprintf("%d", orderNum), nil
	}
	if orderNum > totalNum {
		return "", badOrder("bad order number %d/%d", orderNum, totalNum)
	}
	return fmt.Sprintf("%d/%d", orderNum, totalNum), nil
}

// StandardizeStr converts an order-numbering string to the station's
// standard form.
func StandardizeStr(text string) (string, error) {
	n, total, err := Decode(text)
	if err != nil {
		return "", err
	}
	return Encode(n, total)
}

// IsArchival reports whether text is already in the preferred
// archival "n/m" form with a known total.
func IsArchival(text string) bool {
	if !archivalRE.MatchString(text) {
		return false
	}
	_, total, err := Decode(text)
	return err == nil && total >= 0
}

// VerifyAndStandardizeStrList verifies a full list of order strings
// (one per item in a collection, e.g. every TRCK value in an album)
// and converts each to the standard "n/m" form. It requires that every
// item specifies the same total (or none at all, in which case
// len(textList) is assumed), that order numbers are unique, and that
// every number in [1, len(textList)] is present.
func VerifyAndStandardizeStrList(textList []string) ([]string, error) {
	if len(textList) == 0 {
		return nil, badOrder("passed an empty list")
	}
	expectedTotal := len(textList)
	seen := make(map[int]bool, len(textList))
	out := make([]string, 0, len(textList))

	for _, text := range textList {
		n, total, err := Decode(text)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			return nil, badOrder("duplicate order number: %q", text)
		}
		seen[n] = true
		if total < 0 {
			total = expectedTotal
		} else if total != expectedTotal {
			return nil, badOrder("bad total number in list: %q", text)
		}
		if n > total {
			return nil, badOrder("bad order number: %q", text)
		}
		encoded, err := Encode(n, total)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}

	var missing []int
	for i := 1; i <= expectedTotal; i++ {
		if !seen[i] {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return nil, badOrder("missing order numbers: %v", missing)
	}
	return out, nil
}
