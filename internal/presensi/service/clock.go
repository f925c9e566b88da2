package service

import "time"

// TimestampLayout is how session timestamps are shown to clients.
const TimestampLayout = "2006-01-02 15:04:05Z07:00"

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stamp is the current instant at the precision the store keeps.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}

func formatIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

func formatOptional(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := formatIn(*t, loc)
	return &s
}

// startOfDay is local midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
