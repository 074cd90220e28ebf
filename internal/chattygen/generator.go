// Package chattygen writes synthetic chatty logs for load and fixture testing.
package chattygen

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/brianvoe/gofakeit"
)

const (
	sessionTimeLayout = "2006-01-02 15:04:05 -0700"
	clockLayout       = "15:04:05"
	datedLayout       = "2006-01-02 15:04:05"
)

var sigils = []string{"", "", "", "", "@", "+", "%", "~", "@+", "%+"}

var noticeTemplates = []string{
	"{hacker.verb} mode is now enabled",
	"Viewers: ###",
	"Stream title changed to {hacker.noun} {hacker.noun}",
	"Slow mode set to ## seconds",
}

type Options struct {
	Start              time.Time
	Channels           []string
	Sessions           int
	MessagesPerSession int
	// MaxGap bounds the random delay between two lines. Values of 24h or
	// more would make undated stamps ambiguous and are clamped.
	MaxGap time.Duration
	// DatedEvery writes every n-th message with a full date stamp.
	DatedEvery int
	Seed       int64
}

// Summary describes what Generate wrote.
type Summary struct {
	Lines    int
	Messages int
	Notices  int
	LastAt   time.Time
}

func (o *Options) normalize() {
	if o.Start.IsZero() {
		o.Start = time.Date(2017, 10, 5, 23, 40, 0, 0, time.FixedZone("", 2*60*60))
	}
	// A fixed offset keeps every written wall clock free of DST jumps.
	_, offset := o.Start.Zone()
	o.Start = o.Start.In(time.FixedZone("", offset))
	if len(o.Channels) == 0 {
		o.Channels = []string{"#test"}
	}
	if o.Sessions <= 0 {
		o.Sessions = 1
	}
	if o.MessagesPerSession < 0 {
		o.MessagesPerSession = 0
	}
	if o.MaxGap <= 0 {
		o.MaxGap = 5 * time.Minute
	}
	if o.MaxGap >= 24*time.Hour {
		o.MaxGap = 23 * time.Hour
	}
}

// Generate writes a well-formed log to w. Every session opens with a marker
// and a channel join so the output always resolves without errors.
func Generate(w io.Writer, opts Options) (Summary, error) {
	opts.normalize()
	gofakeit.Seed(opts.Seed)

	g := &generator{
		out:  bufio.NewWriter(w),
		now:  opts.Start,
		opts: opts,
	}
	for s := 0; s < opts.Sessions; s++ {
		g.session()
	}
	if g.err != nil {
		return g.sum, g.err
	}
	if err := g.out.Flush(); err != nil {
		return g.sum, fmt.Errorf("flush generated log: %w", err)
	}
	return g.sum, nil
}

type generator struct {
	out  *bufio.Writer
	now  time.Time
	opts Options
	sum  Summary
	err  error
}

func (g *generator) session() {
	g.line("# Log started: " + g.now.Format(sessionTimeLayout))
	channel := gofakeit.RandString(g.opts.Channels)
	g.tick()
	g.line(g.stamp(false) + " You have joined " + channel)

	for i := 0; i < g.opts.MessagesPerSession; i++ {
		g.tick()
		if gofakeit.Number(0, 9) == 0 {
			g.line(g.stamp(false) + " " + gofakeit.Generate(gofakeit.RandString(noticeTemplates)))
			g.sum.Notices++
			continue
		}
		if len(g.opts.Channels) > 1 && gofakeit.Number(0, 19) == 0 {
			channel = gofakeit.RandString(g.opts.Channels)
			g.line(g.stamp(false) + " You have joined " + channel)
			continue
		}
		dated := g.opts.DatedEvery > 0 && (g.sum.Messages+1)%g.opts.DatedEvery == 0
		sender := gofakeit.RandString(sigils) + gofakeit.Username()
		g.line(fmt.Sprintf("%s <%s> %s", g.stamp(dated), sender, gofakeit.HackerPhrase()))
		g.sum.Messages++
		g.sum.LastAt = g.now
	}

	g.tick()
	g.line("# Log closed: " + g.now.Format(sessionTimeLayout))
	g.line("-")
	g.now = g.now.Add(time.Duration(gofakeit.Number(1, 120)) * time.Minute)
}

func (g *generator) tick() {
	maxSeconds := int(g.opts.MaxGap / time.Second)
	if maxSeconds < 1 {
		maxSeconds = 1
	}
	g.now = g.now.Add(time.Duration(gofakeit.Number(0, maxSeconds)) * time.Second)
}

func (g *generator) stamp(dated bool) string {
	if dated {
		return "[" + g.now.Format(datedLayout) + "]"
	}
	return "[" + g.now.Format(clockLayout) + "]"
}

func (g *generator) line(s string) {
	if g.err != nil {
		return
	}
	if _, err := g.out.WriteString(s + "\n"); err != nil {
		g.err = fmt.Errorf("write generated log: %w", err)
		return
	}
	g.sum.Lines++
}
