package symbol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RowanDark/symtab/internal/bufpool"
)

// Wildcard is the placeholder replaced by WithWildcardNumber.
const Wildcard = '*'

func (s Symbol) HasWildcard() bool {
	return strings.IndexByte(s.String(), Wildcard) >= 0
}

// WithWildcardNumber returns the Symbol whose text is s with its first
// wildcard replaced by the decimal digits of n. Without a wildcard it
// returns s.
func (s Symbol) WithWildcardNumber(n int) Symbol {
	text := s.String()
	i := strings.IndexByte(text, Wildcard)
	if i < 0 {
		return s
	}
	mustNotBeNegative(n)

	buf := bufpool.Acquire()
	defer bufpool.Release(buf)
	b := append(*buf, text[:i]...)
	b = strconv.AppendInt(b, int64(n), 10)
	b = append(b, text[i+1:]...)
	*buf = b
	warnNumberCut(b, n)
	return FromBytes(b)
}

// FinalNumber parses the trailing run of decimal digits in the text of s.
// It returns 0 when there is none and saturates at math.MaxInt.
func (s Symbol) FinalNumber() int {
	text := s.String()
	n := 0
	for i := finalNumberStart(text); i < len(text); i++ {
		d := int(text[i] - '0')
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt
		}
		n = n*10 + d
	}
	return n
}

// WithFinalNumber replaces any trailing digits of s with the digits of n.
// The derived text is subject to the table's length limit like any other,
// so when it does not fit the digits of n are cut and FinalNumber on the
// result no longer returns n. That case is logged as a warning.
func (s Symbol) WithFinalNumber(n int) Symbol {
	mustNotBeNegative(n)
	text := s.String()

	buf := bufpool.Acquire()
	defer bufpool.Release(buf)
	b := append(*buf, text[:finalNumberStart(text)]...)
	b = strconv.AppendInt(b, int64(n), 10)
	*buf = b
	warnNumberCut(b, n)
	return FromBytes(b)
}

// warnNumberCut warns when a text derived with number n exceeds the length
// limit of the default table.
func warnNumberCut(derived []byte, n int) {
	if t := Default(); len(derived) > t.MaxTextLength() {
		t.warnf("text %q derived with number %d exceeds %d bytes and will be truncated", derived, n, t.MaxTextLength())
	}
}

// WithoutFinalNumber strips any trailing digits of s.
func (s Symbol) WithoutFinalNumber() Symbol {
	text := s.String()
	cut := finalNumberStart(text)
	if cut == len(text) {
		return s
	}
	return New(text[:cut])
}

// finalNumberStart returns the index at which the trailing digit run of
// text begins, or len(text) when text does not end in a digit.
func finalNumberStart(text string) int {
	i := len(text)
	for i > 0 && isDigit(text[i-1]) {
		i--
	}
	return i
}

func mustNotBeNegative(n int) {
	if n < 0 {
		panic(fmt.Sprintf("symbol: negative number %d", n))
	}
}
