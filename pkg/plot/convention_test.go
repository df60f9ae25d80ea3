package plot

import (
	"sync"
	"testing"
)

func restoreConvention(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { SetConvention(CConvention) })
}

func TestFormatFloatDefault(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{1234.5, 2, "1234.50"},
		{-1234.5, 2, "-1234.50"},
		{0, 3, "0.000"},
		{297, 0, "297"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.v, tt.prec); got != tt.want {
			t.Errorf("FormatFloat(%g, %d) = %q, want %q", tt.v, tt.prec, got, tt.want)
		}
	}
}

func TestFormatFloatLocalized(t *testing.T) {
	restoreConvention(t)
	SetConvention(Convention{Decimal: ',', Group: '.'})

	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{1234.5, 2, "1.234,50"},
		{-1234.5, 2, "-1.234,50"},
		{1234567, 0, "1.234.567"},
		{12, 1, "12,0"},
		{0.25, 2, "0,25"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.v, tt.prec); got != tt.want {
			t.Errorf("FormatFloat(%g, %d) = %q, want %q", tt.v, tt.prec, got, tt.want)
		}
	}
}

func TestFormatFloatDecimalOnlyConvention(t *testing.T) {
	restoreConvention(t)
	SetConvention(Convention{Decimal: ','})

	if got := FormatFloat(1234.5, 2); got != "1234,50" {
		t.Errorf("FormatFloat = %q, want %q", got, "1234,50")
	}
}

func TestLockPlotIOPinsCConvention(t *testing.T) {
	restoreConvention(t)
	display := Convention{Decimal: ',', Group: '.'}
	SetConvention(display)

	restore := lockPlotIO()
	if ActiveConvention() != CConvention {
		t.Fatalf("locked convention = %+v, want CConvention", ActiveConvention())
	}
	if got := FormatFloat(1234.5, 1); got != "1234.5" {
		t.Errorf("FormatFloat under lock = %q, want %q", got, "1234.5")
	}
	restore()

	if ActiveConvention() != display {
		t.Errorf("convention after restore = %+v, want %+v", ActiveConvention(), display)
	}
}

func TestLockPlotIONests(t *testing.T) {
	restoreConvention(t)
	display := Convention{Decimal: ','}
	SetConvention(display)

	outer := lockPlotIO()
	inner := lockPlotIO()
	inner()
	if ActiveConvention() != CConvention {
		t.Error("inner release dropped the lock before the outer release")
	}
	outer()
	if ActiveConvention() != display {
		t.Errorf("convention after outer release = %+v, want %+v", ActiveConvention(), display)
	}
}

func TestLockPlotIOConcurrent(t *testing.T) {
	restoreConvention(t)
	display := Convention{Decimal: ',', Group: '.'}
	SetConvention(display)

	var wg sync.WaitGroup
	errs := make(chan string, 4)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				release := lockPlotIO()
				if got := FormatFloat(1234.5, 1); got != "1234.5" {
					select {
					case errs <- got:
					default:
					}
				}
				release()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("FormatFloat under lock = %q, want %q", got, "1234.5")
	}
	if ActiveConvention() != display {
		t.Errorf("convention after all releases = %+v, want %+v", ActiveConvention(), display)
	}
}

func TestSetConventionWhileLocked(t *testing.T) {
	restoreConvention(t)

	restore := lockPlotIO()
	SetConvention(Convention{Decimal: ','})
	if ActiveConvention() != CConvention {
		t.Error("SetConvention took effect inside a plot operation")
	}
	restore()
	if ActiveConvention() != (Convention{Decimal: ','}) {
		t.Error("SetConvention during lock was lost after release")
	}
}
