package clock

import "time"

// Clock abstracts time to keep reconcilers and stores deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
