package handlers

import (
	"strings"
	"testing"
	"time"
)

func TestNewCustomerCode(t *testing.T) {
	now := time.UnixMilli(1756600000123)
	code := newCustomerCode(now)

	if !strings.HasPrefix(code, "CUST-") {
		t.Fatalf("expected CUST- prefix, got %q", code)
	}
	if len(code) != 13 {
		t.Fatalf("expected 13 characters, got %d (%q)", len(code), code)
	}
	digits := strings.TrimPrefix(code, "CUST-")
	if len(digits) != 8 {
		t.Fatalf("expected 8 digit suffix, got %q", digits)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			t.Fatalf("non-digit in code suffix: %q", code)
		}
	}
}

func TestNewCustomerCodeChangesOverTime(t *testing.T) {
	a := newCustomerCode(time.UnixMilli(1756600000123))
	b := newCustomerCode(time.UnixMilli(1756600000124))
	if a == b {
		t.Fatalf("codes for different instants should differ, both %q", a)
	}
}
