package valueobject

import (
	"strings"
	"unicode"
)

const (
	PhoneMaskPlaceholder = "••••"
	PhoneUnknown         = "unbekannt"

	phoneKeepPrefix = 4
	phoneKeepSuffix = 3
	phoneShortLimit = 6
)

// MaskPhone скрывает середину номера: первые 4 и последние 3 символа остаются.
// Короткие номера (6 символов и меньше) возвращаются без маски.
func MaskPhone(raw string) string {
	normalized := normalizePhone(raw)
	if normalized == "" {
		return PhoneUnknown
	}

	runes := []rune(normalized)
	if len(runes) <= phoneShortLimit {
		return normalized
	}
	return string(runes[:phoneKeepPrefix]) + PhoneMaskPlaceholder + string(runes[len(runes)-phoneKeepSuffix:])
}

// DisclosePhone применяет правило раскрытия: полный номер только для оплаченного бронирования.
func DisclosePhone(status BookingStatus, paid bool, raw string) (string, bool) {
	if status == BookingStatusPaid && paid {
		value := strings.TrimSpace(raw)
		if value == "" {
			return PhoneUnknown, false
		}
		return value, false
	}
	return MaskPhone(raw), true
}

func normalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
