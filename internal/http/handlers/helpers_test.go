package handlers

import "testing"

func TestParseNumericID(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   int64
		wantOK bool
	}{
		{name: "json number", raw: float64(42), want: 42, wantOK: true},
		{name: "string number", raw: "17", want: 17, wantOK: true},
		{name: "int64", raw: int64(9), want: 9, wantOK: true},
		{name: "zero rejected", raw: float64(0), wantOK: false},
		{name: "negative rejected", raw: "-3", wantOK: false},
		{name: "fractional rejected", raw: float64(1.5), wantOK: false},
		{name: "garbage string", raw: "abc", wantOK: false},
		{name: "nil", raw: nil, wantOK: false},
		{name: "bool", raw: true, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseNumericID(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("parseNumericID(%v) ok = %v, want %v", tc.raw, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("parseNumericID(%v) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount("USD", 23); got != "USD 23.00" {
		t.Fatalf("formatAmount = %q", got)
	}
	if got := formatAmount("USD", 3.456); got != "USD 3.46" {
		t.Fatalf("formatAmount = %q", got)
	}
}
