package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"100":      "100",
		"100.50":   "100.5",
		"100,50":   "100.5",
		" 12.3 ":   "12.3",
		"0.01":     "0.01",
		"10.500":   "10.5",
		"50.00":    "50",
		"99999.99": "99999.99",
	}
	for input, want := range valid {
		got, err := ParseAmount(input)
		if err != nil {
			t.Errorf("ParseAmount(%q) returned error: %v", input, err)
			continue
		}
		if !got.Equal(dec(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", input, got, want)
		}
	}

	invalid := []string{"", "abc", "-5", "0", "0.00", "1.005", "1e3", "12,34,5", "NaN", "2000000000"}
	for _, input := range invalid {
		if _, err := ParseAmount(input); !errors.Is(err, domainErrors.ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q): expected invalid amount, got %v", input, err)
		}
	}
}

func TestParsePoints(t *testing.T) {
	if got, err := ParsePoints(" 25 "); err != nil || got != 25 {
		t.Fatalf("expected 25, got %d (%v)", got, err)
	}
	if got, err := ParsePoints("0"); err != nil || got != 0 {
		t.Fatalf("expected 0, got %d (%v)", got, err)
	}
	for _, input := range []string{"", "-1", "1.5", "ten", "+3", "99999999999999999999"} {
		if _, err := ParsePoints(input); !errors.Is(err, domainErrors.ErrInvalidPoints) {
			t.Errorf("ParsePoints(%q): expected invalid points, got %v", input, err)
		}
	}
}
