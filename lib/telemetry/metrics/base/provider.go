package base

import "time"

// Client is what jobs report to, tags are sent as key:value pairs.
type Client interface {
	Timing(name string, value time.Duration, tags map[string]string)
	Incr(name string, tags map[string]string)
	Count(name string, value int64, tags map[string]string)
	Flush() error
}
