// Package transform turns scraped product cards into clean, typed products.
package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultRate is the IDR amount for one USD used when no rate is configured.
const DefaultRate = 16000

var (
	imageSuffix   = regexp.MustCompile(`\.(jpeg|jpg|png|gif)$`)
	decimalNumber = regexp.MustCompile(`\d+(\.\d+)?`)
	integerNumber = regexp.MustCompile(`\d+`)
	sizeLabel     = regexp.MustCompile(`(?i)^size:\s*`)
	genderLabel   = regexp.MustCompile(`(?i)^gender:\s*`)
)

// CleanTitle trims the title and rejects blank, placeholder and image-file
// titles.
func CleanTitle(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	title := strings.TrimSpace(*raw)
	if title == "" {
		return "", false
	}
	lower := strings.ToLower(title)
	if lower == "unknown product" || imageSuffix.MatchString(lower) {
		return "", false
	}
	return title, true
}

// PriceCleaner converts USD price text to the target currency.
type PriceCleaner struct {
	Rate float64
}

// Clean parses text such as "$1,250.99" and multiplies it by the rate.
func (c PriceCleaner) Clean(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	if strings.ToLower(strings.TrimSpace(*raw)) == "price unavailable" {
		return 0, false
	}

	s := strings.NewReplacer("$", "", ",", "").Replace(*raw)
	usd, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(usd) || math.IsInf(usd, 0) || usd <= 0 {
		return 0, false
	}
	return usd * c.Rate, true
}

// CleanRating pulls the first decimal number out of text like "Rating: ⭐ 4.5 / 5".
func CleanRating(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	lower := strings.ToLower(*raw)
	if strings.Contains(lower, "invalid rating") || strings.Contains(lower, "not rated") {
		return 0, false
	}

	m := decimalNumber.FindString(*raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CleanColors returns the first integer in text like "3 Colors".
func CleanColors(raw *string) (int, bool) {
	if raw == nil {
		return 0, false
	}
	m := integerNumber.FindString(*raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func CleanSize(raw *string) (string, bool) {
	return stripLabel(raw, sizeLabel)
}

func CleanGender(raw *string) (string, bool) {
	return stripLabel(raw, genderLabel)
}

// stripLabel removes a leading "Label:" prefix; an empty remainder is missing.
func stripLabel(raw *string, label *regexp.Regexp) (string, bool) {
	if raw == nil {
		return "", false
	}
	v := strings.TrimSpace(label.ReplaceAllString(strings.TrimSpace(*raw), ""))
	if v == "" {
		return "", false
	}
	return v, true
}
