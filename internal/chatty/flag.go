package chatty

import "fmt"

// Flag is a sender attribute encoded by a sigil before the name.
type Flag uint8

const (
	FlagBroadcaster Flag = iota + 1
	FlagModerator
	FlagPrime
	FlagSubscriber
	// FlagStaff has no sigil in the log grammar. It is only produced by
	// constructing a Sender directly or by reading a stored flag back
	// with ParseFlag.
	FlagStaff
)

var flagNames = map[Flag]string{
	FlagBroadcaster: "broadcaster",
	FlagModerator:   "moderator",
	FlagPrime:       "prime",
	FlagSubscriber:  "subscriber",
	FlagStaff:       "staff",
}

var sigilFlags = map[byte]Flag{
	'+': FlagPrime,
	'@': FlagModerator,
	'%': FlagSubscriber,
	'~': FlagBroadcaster,
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("flag(%d)", uint8(f))
}

// ParseFlag is the inverse of Flag.String for the five known flags.
func ParseFlag(s string) (Flag, error) {
	for f, name := range flagNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown message flag %q", s)
}

// FlagForSigil reports the flag encoded by a sender sigil character.
func FlagForSigil(c byte) (Flag, bool) {
	f, ok := sigilFlags[c]
	return f, ok
}

// FlagNames returns the persistence names of flags, preserving order.
func FlagNames(flags []Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.String())
	}
	return out
}

func HasFlag(flags []Flag, want Flag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
