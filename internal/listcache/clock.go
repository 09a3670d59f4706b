package listcache

import "time"

// Timer is the cancel handle of a scheduled task.
type Timer interface {
	// Stop cancels the task. It returns false if the task already ran or was stopped.
	Stop() bool
}

// Clock schedules delayed tasks. Debounce goes through a Clock so tests can
// drive time explicitly.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock schedules tasks on the runtime timer.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
