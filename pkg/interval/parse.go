package interval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// ErrSyntax is returned for text that is not in interval notation.
var ErrSyntax = errors.New("invalid interval syntax")

// labelSeparator divides the bracketed range from an optional label.
const labelSeparator = '@'

// Parse reads interval notation such as "[1,5]", "(1,5]", "[-inf,10)" or
// "[0.5,2.5]@sensor-a" as an interval of the given kind.
func Parse(kind numeric.Kind, text string) (Interval, error) {
	body := strings.TrimSpace(text)

	var opts []Option

	if closing := strings.IndexAny(body, ")]"); closing >= 0 && closing < len(body)-1 {
		rest := body[closing+1:]
		if rest[0] != labelSeparator {
			return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, text)
		}

		opts = append(opts, WithLabel(rest[1:]))
		body = body[:closing+1]
	}

	if len(body) < len("[,]") {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}

	openStart, okStart := bracket(body[0], '(', '[')
	openEnd, okEnd := bracket(body[len(body)-1], ')', ']')

	if !okStart || !okEnd {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}

	startText, endText, found := strings.Cut(body[1:len(body)-1], ",")
	if !found || strings.Contains(endText, ",") {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, text)
	}

	start, err := numeric.Parse(kind, startText)
	if err != nil {
		return Interval{}, err
	}

	end, err := numeric.Parse(kind, endText)
	if err != nil {
		return Interval{}, err
	}

	opts = append(opts, WithOpen(openStart, openEnd))

	return New(kind, start, end, opts...)
}

// bracket reports whether c is the open or the closed bracket.
func bracket(c, open, closed byte) (isOpen, ok bool) {
	switch c {
	case open:
		return true, true
	case closed:
		return false, true
	default:
		return false, false
	}
}
