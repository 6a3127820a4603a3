package bot

import "fmt"

// HistoryLevel controls what happens to the bot's previous message in a
// chat when a new one is sent (or when free text dismisses the current
// screen).
type HistoryLevel int

const (
	// HistoryKeep leaves old messages untouched.
	HistoryKeep HistoryLevel = iota
	// HistoryMarkupOnly strips the old message's keyboard but keeps its
	// text, so past screens remain readable without stale buttons.
	HistoryMarkupOnly
	// HistoryDelete removes the old message outright.
	HistoryDelete
)

func (l HistoryLevel) String() string {
	switch l {
	case HistoryKeep:
		return "keep"
	case HistoryMarkupOnly:
		return "markup_only"
	case HistoryDelete:
		return "delete"
	default:
		return fmt.Sprintf("HistoryLevel(%d)", int(l))
	}
}

func ParseHistoryLevel(s string) (HistoryLevel, error) {
	switch s {
	case "", "keep":
		return HistoryKeep, nil
	case "markup_only":
		return HistoryMarkupOnly, nil
	case "delete":
		return HistoryDelete, nil
	default:
		return HistoryKeep, fmt.Errorf("unknown history level %q (want keep|markup_only|delete)", s)
	}
}
