package chatty

import (
	"fmt"
	"time"
)

// Clock is a time of day as printed inside a timestamp bracket.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Date is the calendar part of a dated timestamp.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// RawTimestamp is a bracketed stamp before it is anchored to a calendar day.
// Date is only meaningful when HasDate is set.
type RawTimestamp struct {
	Clock   Clock
	Date    Date
	HasDate bool
}

func (r RawTimestamp) String() string {
	if r.HasDate {
		return r.Date.String() + " " + r.Clock.String()
	}
	return r.Clock.String()
}

// Sender is a message author with the flags its sigils encode.
type Sender struct {
	Name  string
	Flags []Flag
}

// Event is one classified log line. The set of implementations is closed.
type Event interface {
	event()
}

// SessionBegin opens a log session and sets the anchor to At.
type SessionBegin struct {
	At time.Time
}

// SessionEnd closes a log session and also sets the anchor.
type SessionEnd struct {
	At time.Time
}

// ChannelJoined switches the current channel.
type ChannelJoined struct {
	Time    RawTimestamp
	Channel string
}

// Message is a chat line from a sender in the current channel.
type Message struct {
	Time   RawTimestamp
	Sender Sender
	Body   string
}

// SystemNotice is a timestamped line that is neither a message nor a join.
type SystemNotice struct {
	Time RawTimestamp
	Body string
}

// Separator is the lone "-" line between sessions.
type Separator struct{}

// Unclassified holds a line no rule matched.
type Unclassified struct {
	Text string
}

func (SessionBegin) event()  {}
func (SessionEnd) event()    {}
func (ChannelJoined) event() {}
func (Message) event()       {}
func (SystemNotice) event()  {}
func (Separator) event()     {}
func (Unclassified) event()  {}
