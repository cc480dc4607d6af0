package core

import "time"

// Date-only arithmetic: calendar days are normalised to midnight UTC so
// that values scanned from DATE columns and values built in code compare
// equal.

func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MondayOf returns the Monday of the week containing d.
func MondayOf(d time.Time) time.Time {
	d = DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// IsWorkDay applies the specialist's working-day map and, when the config
// says so, the national calendar plus the specialist's custom dates.
func (s *Service) IsWorkDay(d time.Time, cfg SpecialistConfig) bool {
	if !cfg.Workdays.WorksOn(d.Weekday()) {
		return false
	}
	if !cfg.ConsiderHolidays {
		return true
	}
	for _, h := range s.holidays.National(d.Year()) {
		if sameDate(d, h) {
			return false
		}
	}
	for _, h := range cfg.CustomHolidays {
		if sameDate(d, h) {
			return false
		}
	}
	return true
}

// EndOf walks the calendar from start, consuming up to DailyHours per work
// day, and returns the day on which hours run out. Zero or negative hours
// end on the start day itself; a non-working start day advances to the
// first work day before consuming.
func (s *Service) EndOf(start time.Time, hours float64, cfg SpecialistConfig) time.Time {
	const eps = 1e-9

	day := DateOf(start)
	if hours <= eps {
		return day
	}

	for !s.IsWorkDay(day, cfg) {
		day = day.AddDate(0, 0, 1)
	}

	remaining := hours
	for {
		if s.IsWorkDay(day, cfg) {
			remaining -= cfg.DailyHours
			if remaining <= eps {
				return day
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}

// NextWorkDay advances one day, then skips non-working days.
func (s *Service) NextWorkDay(d time.Time, cfg SpecialistConfig) time.Time {
	day := DateOf(d).AddDate(0, 0, 1)
	for !s.IsWorkDay(day, cfg) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// CapacityHours is the total hours available to a specialist across the
// inclusive date range.
func (s *Service) CapacityHours(from, to time.Time, cfg SpecialistConfig) float64 {
	var total float64
	for day := DateOf(from); !day.After(DateOf(to)); day = day.AddDate(0, 0, 1) {
		if s.IsWorkDay(day, cfg) {
			total += cfg.DailyHours
		}
	}
	return total
}

// BrazilHolidays serves the national calendar: the fixed civic dates plus
// the Easter-derived ones (Carnival Monday/Tuesday, Good Friday, Corpus
// Christi).
type BrazilHolidays struct{}

func (BrazilHolidays) National(year int) []time.Time {
	fixed := []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),   // Confraternização Universal
		time.Date(year, time.April, 21, 0, 0, 0, 0, time.UTC),    // Tiradentes
		time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC),       // Dia do Trabalho
		time.Date(year, time.September, 7, 0, 0, 0, 0, time.UTC), // Independência
		time.Date(year, time.October, 12, 0, 0, 0, 0, time.UTC),  // Nossa Senhora Aparecida
		time.Date(year, time.November, 2, 0, 0, 0, 0, time.UTC),  // Finados
		time.Date(year, time.November, 15, 0, 0, 0, 0, time.UTC), // Proclamação da República
		time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC), // Natal
	}

	easter := easterSunday(year)
	movable := []time.Time{
		easter.AddDate(0, 0, -48), // Carnaval (segunda)
		easter.AddDate(0, 0, -47), // Carnaval (terça)
		easter.AddDate(0, 0, -2),  // Sexta-feira Santa
		easter.AddDate(0, 0, 60),  // Corpus Christi
	}

	return append(fixed, movable...)
}

// easterSunday implements the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
