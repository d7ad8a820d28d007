package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	calendarProdID  = "-//Hebammen//Buchungen//DE"
	calendarUIDHost = "hebammen"
	icsDateFormat   = "20060102"
	icsStampFormat  = "20060102T150405Z"
)

// CalendarFeedUseCase собирает iCalendar-фид подтверждённых и оплаченных бронирований акушерки.
type CalendarFeedUseCase struct {
	profileRepo  repository.ProfileRepository
	bookingRepo  repository.BookingRepository
	calendarName string
}

func NewCalendarFeedUseCase(profileRepo repository.ProfileRepository, bookingRepo repository.BookingRepository, calendarName string) *CalendarFeedUseCase {
	if calendarName == "" {
		calendarName = "Hebammen Buchungen"
	}
	return &CalendarFeedUseCase{
		profileRepo:  profileRepo,
		bookingRepo:  bookingRepo,
		calendarName: calendarName,
	}
}

func (uc *CalendarFeedUseCase) Execute(ctx context.Context, token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.New(apperror.ErrCodeNotFound, "календарь не найден")
	}

	profile, err := uc.profileRepo.FindByCalendarToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !profile.IsMidwife() {
		return nil, apperror.New(apperror.ErrCodeNotFound, "календарь не найден")
	}

	bookings, err := uc.bookingRepo.ListCalendarBookings(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return []byte(RenderCalendar(uc.calendarName, bookings, time.Now().UTC())), nil
}

// RenderCalendar формирует VCALENDAR с событием на весь день для каждого бронирования.
// Отдельной даты приёма у бронирования нет, поэтому используется дата создания.
func RenderCalendar(name string, bookings []*entity.Booking, now time.Time) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+calendarProdID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(name))

	stamp := now.UTC().Format(icsStampFormat)
	for _, booking := range bookings {
		if !booking.Status.IsCalendarVisible() {
			continue
		}
		day := booking.CreatedAt.UTC()
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:%s@%s", booking.ID, calendarUIDHost))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART;VALUE=DATE:"+day.Format(icsDateFormat))
		writeLine(&b, "DTEND;VALUE=DATE:"+day.AddDate(0, 0, 1).Format(icsDateFormat))
		writeLine(&b, "SUMMARY:"+escapeText("Hausgeburt-Buchung ("+booking.Status.String()+")"))
		writeLine(&b, "STATUS:CONFIRMED")
		writeLine(&b, "END:VEVENT")
	}
	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeLine пишет строку с CRLF и переносом длинных строк по 75 октетов.
func writeLine(b *strings.Builder, line string) {
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// строка продолжения начинается с пробела
		limit = 74
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}
