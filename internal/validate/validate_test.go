package validate

import (
	"testing"
	"time"
)

func TestExchange(t *testing.T) {
	if _, err := Exchange("nse"); err != nil {
		t.Errorf("lowercase nse should be accepted: %v", err)
	}
	if _, err := Exchange("NYSE"); err == nil {
		t.Errorf("NYSE should be rejected")
	}
}

func TestSymbol(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"reliance", false},
		{"NIFTY-50", false},
		{"M&M", false},
		{"", true},
		{"bad symbol", true},
	}
	for _, c := range cases {
		_, err := Symbol(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("Symbol(%q): err=%v, wantErr=%v", c.in, err, c.wantErr)
		}
	}
}

func TestDateRange(t *testing.T) {
	now := time.Now()
	if err := DateRange(now, now); err == nil {
		t.Errorf("equal from/to should be rejected")
	}
	if err := DateRange(now.Add(time.Hour), now); err == nil {
		t.Errorf("from after to should be rejected")
	}
	if err := DateRange(now, now.Add(time.Hour)); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
}

func TestPriceAndSize(t *testing.T) {
	if err := Price(0); err == nil {
		t.Errorf("zero price should be rejected")
	}
	if err := Price(-1); err == nil {
		t.Errorf("negative price should be rejected")
	}
	if err := Size(-1); err == nil {
		t.Errorf("negative size should be rejected")
	}
	if err := Size(0); err != nil {
		t.Errorf("zero size should be accepted: %v", err)
	}
}
