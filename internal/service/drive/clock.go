package drive

import "time"

// Clock supplies the current time to services
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reads the wall clock
var SystemClock Clock = systemClock{}

// Limits bounds tree walks
type Limits struct {
	MaxCascadeNodes int
	MaxTreeDepth    int
}
