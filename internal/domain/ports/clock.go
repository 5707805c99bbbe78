package ports

import "time"

// Clock abstracts wall-clock reads so expiry boundaries are deterministic in
// tests. Production code uses RealClock; tests inject a fixed/advanceable one.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock { return realClock{} }
