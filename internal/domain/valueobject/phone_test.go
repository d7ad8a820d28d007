package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	masked := MaskPhone("0151 23456789")
	assert.Equal(t, "0151••••789", masked)
	assert.True(t, strings.HasPrefix(masked, "0151"))
	assert.True(t, strings.HasSuffix(masked, "789"))
	assert.NotEqual(t, "0151 23456789", masked)
}

func TestMaskPhone_StripsHyphensAndSpaces(t *testing.T) {
	assert.Equal(t, "+491••••321", MaskPhone("+49 170-987 654 321"))
}

func TestMaskPhone_ShortValueReturnedAsIs(t *testing.T) {
	assert.Equal(t, "112", MaskPhone("112"))
	assert.Equal(t, "123456", MaskPhone("12-34 56"))
	assert.Equal(t, "1234••••567", MaskPhone("1234567"))
}

func TestMaskPhone_Empty(t *testing.T) {
	assert.Equal(t, PhoneUnknown, MaskPhone(""))
	assert.Equal(t, PhoneUnknown, MaskPhone("  - "))
}

func TestDisclosePhone(t *testing.T) {
	value, masked := DisclosePhone(BookingStatusConfirmed, false, "0151 23456789")
	assert.True(t, masked)
	assert.Equal(t, "0151••••789", value)

	value, masked = DisclosePhone(BookingStatusPaid, true, "0151 23456789")
	assert.False(t, masked)
	assert.Equal(t, "0151 23456789", value)

	// статус PAID без отметки об оплате не раскрывает номер
	value, masked = DisclosePhone(BookingStatusPaid, false, "0151 23456789")
	assert.True(t, masked)
	assert.Equal(t, "0151••••789", value)

	value, _ = DisclosePhone(BookingStatusPaid, true, "")
	assert.Equal(t, PhoneUnknown, value)
}
