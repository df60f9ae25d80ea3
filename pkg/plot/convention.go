package plot

import (
	"strconv"
	"strings"
	"sync"
)

// Convention describes how numbers are rendered in text output: the decimal
// mark and an optional digit-grouping separator.
type Convention struct {
	Decimal byte
	Group   byte
}

// CConvention is the fixed convention required inside plot files: a plain
// decimal point and no digit grouping.
var CConvention = Convention{Decimal: '.'}

// The package-level convention mirrors the process-wide numeric state of an
// embedding application that localizes its display output. Plot operations
// must not be affected by it, so the controller pins CConvention for their
// duration. The counted lock is shared by every controller in the process;
// the mutex keeps the count and the saved convention consistent when plot
// sessions run on separate goroutines, all of which pin the same value.
var (
	convMu     sync.Mutex
	convention = CConvention
	savedConv  = CConvention
	lockDepth  int
)

// SetConvention installs the display convention applied by FormatFloat
// outside plot operations. While a plot operation is active the new value
// takes effect once the operation finishes.
func SetConvention(c Convention) {
	if c.Decimal == 0 {
		c.Decimal = '.'
	}
	convMu.Lock()
	defer convMu.Unlock()
	if lockDepth > 0 {
		savedConv = c
		return
	}
	convention = c
}

// ActiveConvention returns the convention currently applied by FormatFloat.
func ActiveConvention() Convention {
	convMu.Lock()
	defer convMu.Unlock()
	return convention
}

// lockPlotIO pins the C numeric convention for the duration of a plot
// operation. The returned func restores the prior convention and must be
// deferred. Calls nest across controllers and goroutines; restoration
// happens when the outermost lock releases, on every exit path including
// errors.
func lockPlotIO() func() {
	convMu.Lock()
	if lockDepth == 0 {
		savedConv = convention
		convention = CConvention
	}
	lockDepth++
	convMu.Unlock()
	return func() {
		convMu.Lock()
		lockDepth--
		if lockDepth == 0 {
			convention = savedConv
		}
		convMu.Unlock()
	}
}

// FormatFloat renders v in fixed notation with prec digits after the
// decimal mark, using the active convention.
func FormatFloat(v float64, prec int) string {
	conv := ActiveConvention()

	s := strconv.FormatFloat(v, 'f', prec, 64)
	if conv == CConvention {
		return s
	}

	intPart := s
	var fracPart string
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	if conv.Group != 0 {
		var sb strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			sb.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if sb.Len() > 0 {
				sb.WriteByte(conv.Group)
			}
			sb.WriteString(intPart[i : i+3])
		}
		intPart = sb.String()
	}

	if fracPart == "" {
		return sign + intPart
	}
	return sign + intPart + string(conv.Decimal) + fracPart
}
