package services

import "time"

// Clock abstracts the time source so hold TTLs and expiry sweeps can be
// tested by advancing simulated time instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
