package resource

import (
	"log"
	"time"
)

// Reporter is the single channel every failed load or action goes through.
type Reporter interface {
	Report(action string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(action string, err error)

// Report calls f.
func (f ReporterFunc) Report(action string, err error) { f(action, err) }

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(string, error) {})

// LogReporter writes reports to a logger.
type LogReporter struct {
	Logger *log.Logger
}

// Report logs the failure.
func (l LogReporter) Report(action string, err error) {
	if l.Logger == nil || err == nil {
		return
	}
	l.Logger.Printf("%s failed: %v", action, err)
}

// Report is one failure delivered through a ChannelReporter.
type Report struct {
	Action string
	Err    error
	At     time.Time
}

// ChannelReporter forwards reports to a buffered channel. When the buffer
// is full the oldest pending report is dropped so reporting never blocks.
type ChannelReporter struct {
	ch chan Report
}

// NewChannelReporter creates a reporter with the given buffer size.
func NewChannelReporter(size int) *ChannelReporter {
	if size < 1 {
		size = 1
	}
	return &ChannelReporter{ch: make(chan Report, size)}
}

// Report enqueues the failure.
func (c *ChannelReporter) Report(action string, err error) {
	if err == nil {
		return
	}
	rep := Report{Action: action, Err: err, At: time.Now()}
	for {
		select {
		case c.ch <- rep:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side.
func (c *ChannelReporter) C() <-chan Report { return c.ch }

// Multi fans a report out to several reporters.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(action string, err error) {
		for _, r := range reporters {
			if r != nil {
				r.Report(action, err)
			}
		}
	})
}
