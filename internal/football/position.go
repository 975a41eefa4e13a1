package football

import "strings"

type Position string

const (
	Goalkeeper Position = "GOALKEEPER"
	Defender   Position = "DEFENDER"
	Midfielder Position = "MIDFIELDER"
	Forward    Position = "FORWARD"
)

var positionCodes = map[Position][2]string{
	Goalkeeper: {"GK", "Goalkeeper"},
	Defender:   {"DEF", "Defender"},
	Midfielder: {"MID", "Midfielder"},
	Forward:    {"FWD", "Forward"},
}

func (p Position) Valid() bool {
	_, ok := positionCodes[p]
	return ok
}

func (p Position) ShortCode() string {
	return positionCodes[p][0]
}

func (p Position) DisplayName() string {
	return positionCodes[p][1]
}

// ParsePosition accepts the enum name, the short code or the display name, case-insensitively.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	for p, codes := range positionCodes {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, codes[0]) || strings.EqualFold(s, codes[1]) {
			return p, nil
		}
	}
	return "", invalid("position", "unknown position "+s)
}
