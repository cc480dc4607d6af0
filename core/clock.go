package core

import "time"

// systemClock yields wall time in a fixed location. User-observable
// timestamps are taken in the board's timezone (America/Sao_Paulo by
// default); storage keeps them timezone-aware.
type systemClock struct {
	loc *time.Location
}

func NewSystemClock(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return systemClock{loc: loc}, nil
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }
