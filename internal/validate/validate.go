package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'\-]{1,50}$`)
	reSlug  = regexp.MustCompile(`^[a-z]{1,32}$`)
	reExp   = regexp.MustCompile(`^(0[1-9]|1[0-2])[0-9]{2}$`)
)

// digits strips everything but 0-9, so "01001-000" becomes "01001000".
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CEP normalizes a Brazilian postal code and reports whether it has 8 digits.
func CEP(s string) (string, bool) {
	d := digits(s)
	return d, len(d) == 8
}

// CPF normalizes a taxpayer number; only the length is checked.
func CPF(s string) (string, bool) {
	d := digits(s)
	return d, len(d) == 11
}

func Phone(s string) (string, bool) {
	d := digits(s)
	return d, len(d) == 10 || len(d) == 11
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// Category validates a category slug.
func Category(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reSlug.MatchString(s)
}

// Delta checks a quantity change. Zero and absurd steps are rejected.
func Delta(n int) (int, bool) {
	if n == 0 || n < -99 || n > 99 {
		return 0, false
	}
	return n, true
}

// ID validates a numeric resource identifier (product/store ids).
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > 120 {
		return "", false
	}
	return s, true
}

// Password enforces a length window; the commerce API owns the real policy.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 128
}

const (
	PaymentCreditCard = "credit-card"
	PaymentPix        = "pix"
	PaymentBoleto     = "boleto"
)

func PaymentMethod(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case PaymentCreditCard, PaymentPix, PaymentBoleto:
		return s, true
	}
	return "", false
}

func CardNumber(s string) (string, bool) {
	d := digits(s)
	return d, len(d) == 16
}

// CardExpiry accepts MM/AA or MMAA.
func CardExpiry(s string) (string, bool) {
	d := digits(s)
	return d, reExp.MatchString(d)
}

func CVV(s string) (string, bool) {
	d := strings.TrimSpace(s)
	return d, len(d) == 3 && digits(d) == d
}
