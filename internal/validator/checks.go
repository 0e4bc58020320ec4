package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docfill/internal/domain"
)

// Stable rejection reasons. The retry state machine compares these strings
// across submissions, so each check must return the same reason for the
// same class of failure.
const (
	ReasonRequired        = "value is required"
	ReasonInvalidCurrency = "invalid currency amount"
	ReasonInvalidDate     = "invalid date format"
	ReasonInvalidEmail    = "invalid email format"
	ReasonInvalidPhone    = "invalid phone number"
	ReasonInvalidNumber   = "invalid number"
	ReasonInvalidURL      = "invalid url"
)

var (
	currencyPattern = regexp.MustCompile(`^\$\d{1,3}(,\d{3})*\.\d{2}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	urlPattern      = regexp.MustCompile(`^https?://[^\s]+\.[^\s]+$`)
	bareHostPattern = regexp.MustCompile(`^[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)+(/[^\s]*)?$`)
)

// canonicalDate is the accepted date output format.
const canonicalDate = "2006-01-02"

// outcome is the result of a type check on a submitted value.
type outcome struct {
	// valid means the value is acceptable as submitted; canonical carries
	// the accepted form.
	valid     bool
	canonical string
	// proposal is a normalized alternative with its confidence, offered
	// when the value is not acceptable as-is but clearly recoverable.
	proposal   string
	confidence float64
	// reason is the stable rejection reason when nothing else applies.
	reason string
}

func accept(canonical string) outcome   { return outcome{valid: true, canonical: canonical} }
func reject(reason string) outcome      { return outcome{reason: reason} }
func propose(v string, c float64) outcome { return outcome{proposal: v, confidence: c} }

// checkValue runs the type-specific format check plus normalization for a
// single submitted value. The empty-value case is handled by the engine.
func checkValue(dt domain.DataType, value string) outcome {
	v := strings.TrimSpace(value)
	switch dt {
	case domain.DataTypeCurrency:
		return checkCurrency(v)
	case domain.DataTypeDate:
		return checkDate(v)
	case domain.DataTypeEmail:
		return checkEmail(v)
	case domain.DataTypePhone:
		return checkPhone(v)
	case domain.DataTypeNumber:
		return checkNumber(v)
	case domain.DataTypeURL:
		return checkURL(v)
	default:
		// Free-form types accept anything non-empty.
		return accept(v)
	}
}

func checkCurrency(v string) outcome {
	if currencyPattern.MatchString(v) {
		return accept(v)
	}
	cleaned := strings.TrimSpace(strings.TrimPrefix(v, "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return reject(ReasonInvalidCurrency)
	}
	return propose(formatCurrency(amount), 0.9)
}

// formatCurrency renders an amount as "$5,000.00".
func formatCurrency(amount float64) string {
	whole := int64(amount)
	cents := int64((amount-float64(whole))*100 + 0.5)
	if cents >= 100 {
		whole++
		cents -= 100
	}
	return fmt.Sprintf("$%s.%02d", groupThousands(whole), cents)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}

func checkDate(v string) outcome {
	if t, err := time.Parse(canonicalDate, v); err == nil {
		return accept(t.Format(canonicalDate))
	}
	if t, err := parseDate(v); err == nil {
		return propose(t.Format(canonicalDate), 0.85)
	}
	return reject(ReasonInvalidDate)
}

// parseDate tries common date formats.
func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"2006/01/02",
		"02 Jan 2006",
		"2 Jan 2006",
		"Jan 02, 2006",
		"Jan 2, 2006",
		"January 02, 2006",
		"January 2, 2006",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

func checkEmail(v string) outcome {
	if emailPattern.MatchString(v) {
		if lower := strings.ToLower(v); lower != v {
			return propose(lower, 0.95)
		}
		return accept(v)
	}
	return reject(ReasonInvalidEmail)
}

func checkPhone(v string) outcome {
	if phonePattern.MatchString(v) {
		return accept(v)
	}
	var digits strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return reject(ReasonInvalidPhone)
	}
	return propose(fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:]), 0.9)
}

func checkNumber(v string) outcome {
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return accept(v)
	}
	cleaned := strings.ReplaceAll(v, ",", "")
	if _, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return propose(cleaned, 0.9)
	}
	return reject(ReasonInvalidNumber)
}

func checkURL(v string) outcome {
	if urlPattern.MatchString(v) {
		return accept(v)
	}
	if bareHostPattern.MatchString(v) {
		return propose("https://"+v, 0.8)
	}
	return reject(ReasonInvalidURL)
}
