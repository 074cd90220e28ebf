package chatty

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	sessionBeginPrefix = "# Log started: "
	sessionEndPrefix   = "# Log closed: "
	sessionTimeLayout  = "2006-01-02 15:04:05 -0700"
	joinedPhrase       = "You have joined"
	separatorLine      = "-"
)

var errNoMatch = errors.New("no match")

// ParseLine classifies a single log line with its line terminator removed.
// Rules are tried in order: message, channel join, system notice, session
// begin, session end, separator. Anything else is Unclassified.
func ParseLine(line string) (Event, error) {
	if strings.HasPrefix(line, "[") {
		ev, err := parseStamped(line)
		if !errors.Is(err, errNoMatch) {
			return ev, err
		}
	}
	switch {
	case strings.HasPrefix(line, sessionBeginPrefix):
		at, err := parseSessionTime(line[len(sessionBeginPrefix):])
		if err != nil {
			return nil, err
		}
		return SessionBegin{At: at}, nil
	case strings.HasPrefix(line, sessionEndPrefix):
		at, err := parseSessionTime(line[len(sessionEndPrefix):])
		if err != nil {
			return nil, err
		}
		return SessionEnd{At: at}, nil
	case line == separatorLine:
		return Separator{}, nil
	}
	return Unclassified{Text: line}, nil
}

func parseSessionTime(s string) (time.Time, error) {
	t, err := time.Parse(sessionTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: session marker time %q: %v", ErrParse, s, err)
	}
	// Parse may hand back time.Local when the offset happens to match it;
	// the anchor must keep the literal offset only.
	_, offset := t.Zone()
	return t.In(time.FixedZone("", offset)), nil
}

func parseStamped(line string) (Event, error) {
	stamp, rest, err := scanTimestamp(line)
	if err != nil {
		return nil, err
	}
	if rest == "" {
		return nil, fmt.Errorf("%w: nothing after timestamp %q", ErrIncompleteLine, line)
	}
	body, ok := skipSpace(rest)
	if !ok {
		return nil, errNoMatch
	}

	if sender, after, ok := scanSender(body); ok {
		if text, ok := skipSpace(after); ok {
			return Message{Time: stamp, Sender: sender, Body: text}, nil
		}
	}
	if after, ok := strings.CutPrefix(body, joinedPhrase); ok {
		if channel, ok := skipSpace(after); ok {
			return ChannelJoined{Time: stamp, Channel: channel}, nil
		}
	}
	return SystemNotice{Time: stamp, Body: body}, nil
}

// skipSpace consumes one or more spaces or tabs.
func skipSpace(s string) (string, bool) {
	trimmed := strings.TrimLeft(s, " \t")
	if len(trimmed) == len(s) {
		return s, false
	}
	return trimmed, true
}

// scanSender reads "<" sigils name ">". Sigils are consumed greedily, so a
// name made only of sigil characters does not match.
func scanSender(s string) (Sender, string, bool) {
	if !strings.HasPrefix(s, "<") {
		return Sender{}, s, false
	}
	i := 1
	var flags []Flag
	for ; i < len(s); i++ {
		f, ok := FlagForSigil(s[i])
		if !ok {
			break
		}
		if !HasFlag(flags, f) {
			flags = append(flags, f)
		}
	}
	end := strings.IndexByte(s[i:], '>')
	if end <= 0 {
		return Sender{}, s, false
	}
	return Sender{Name: s[i : i+end], Flags: flags}, s[i+end+1:], true
}

type cursor struct {
	s   string
	pos int
}

func (c *cursor) expect(b byte) error {
	if c.pos >= len(c.s) {
		return ErrIncompleteLine
	}
	if c.s[c.pos] != b {
		return errNoMatch
	}
	c.pos++
	return nil
}

func (c *cursor) digits() (int, error) {
	start := c.pos
	for c.pos < len(c.s) && c.s[c.pos] >= '0' && c.s[c.pos] <= '9' {
		c.pos++
	}
	if c.pos == start {
		if c.pos >= len(c.s) {
			return 0, ErrIncompleteLine
		}
		return 0, errNoMatch
	}
	n, err := strconv.Atoi(c.s[start:c.pos])
	if err != nil {
		return 0, fmt.Errorf("%w: digit group %q: %v", ErrParse, c.s[start:c.pos], err)
	}
	return n, nil
}

func (c *cursor) peek() (byte, bool) {
	if c.pos >= len(c.s) {
		return 0, false
	}
	return c.s[c.pos], true
}

// scanTimestamp reads "[" [Y-M-D " "] h:m:s "]" from the start of line and
// returns the remainder after the closing bracket.
func scanTimestamp(line string) (RawTimestamp, string, error) {
	c := &cursor{s: line}
	stamp, err := scanTimestampFields(c)
	if errors.Is(err, ErrIncompleteLine) {
		return RawTimestamp{}, "", fmt.Errorf("%w: unterminated timestamp %q", ErrIncompleteLine, line)
	}
	if err != nil {
		return RawTimestamp{}, "", err
	}
	if err := validateTimestamp(stamp); err != nil {
		return RawTimestamp{}, "", err
	}
	return stamp, line[c.pos:], nil
}

func scanTimestampFields(c *cursor) (RawTimestamp, error) {
	var stamp RawTimestamp
	if err := c.expect('['); err != nil {
		return stamp, err
	}
	first, err := c.digits()
	if err != nil {
		return stamp, err
	}
	next, ok := c.peek()
	if !ok {
		return stamp, ErrIncompleteLine
	}
	if next == '-' {
		stamp.HasDate = true
		stamp.Date.Year = first
		if err := c.expect('-'); err != nil {
			return stamp, err
		}
		month, err := c.digits()
		if err != nil {
			return stamp, err
		}
		stamp.Date.Month = time.Month(month)
		if err := c.expect('-'); err != nil {
			return stamp, err
		}
		if stamp.Date.Day, err = c.digits(); err != nil {
			return stamp, err
		}
		if err := c.expect(' '); err != nil {
			return stamp, err
		}
		if first, err = c.digits(); err != nil {
			return stamp, err
		}
	}
	stamp.Clock.Hour = first
	if err := c.expect(':'); err != nil {
		return stamp, err
	}
	if stamp.Clock.Minute, err = c.digits(); err != nil {
		return stamp, err
	}
	if err := c.expect(':'); err != nil {
		return stamp, err
	}
	if stamp.Clock.Second, err = c.digits(); err != nil {
		return stamp, err
	}
	if err := c.expect(']'); err != nil {
		return stamp, err
	}
	return stamp, nil
}

func validateTimestamp(stamp RawTimestamp) error {
	c := stamp.Clock
	if c.Hour > 23 || c.Minute > 59 || c.Second > 59 {
		return fmt.Errorf("%w: time of day %s out of range", ErrTimestamp, c)
	}
	if !stamp.HasDate {
		return nil
	}
	d := stamp.Date
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		return fmt.Errorf("%w: calendar date %s does not exist", ErrTimestamp, d)
	}
	return nil
}
