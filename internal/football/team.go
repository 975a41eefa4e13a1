package football

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Team struct {
	id        uuid.UUID
	name      string
	shortName string
	country   string
	logoURL   string
	players   []*Player
	createdAt time.Time
	updatedAt time.Time
}

func NewTeam(name, shortName, country, logoURL string) (*Team, error) {
	if err := validateTeamName(name); err != nil {
		return nil, err
	}
	if err := validateShortName(shortName); err != nil {
		return nil, err
	}

	t := now()
	return &Team{
		id:        newID(),
		name:      name,
		shortName: shortName,
		country:   country,
		logoURL:   logoURL,
		createdAt: t,
		updatedAt: t,
	}, nil
}

// AddPlayer appends p to the roster, keeping insertion order.
func (t *Team) AddPlayer(p *Player) error {
	if p == nil {
		return invalid("player", "must be specified")
	}
	if t.HasPlayer(p) {
		return &DuplicateMemberError{TeamID: t.id, PlayerID: p.id}
	}
	t.players = append(t.players, p)
	t.updatedAt = now()
	return nil
}

func (t *Team) RemovePlayer(p *Player) error {
	if p == nil {
		return invalid("player", "must be specified")
	}
	for i, member := range t.players {
		if member.Equal(p) {
			t.players = append(t.players[:i:i], t.players[i+1:]...)
			t.updatedAt = now()
			return nil
		}
	}
	return &NotFoundError{Entity: "team member", ID: p.id}
}

type TeamUpdate struct {
	Name      *string
	ShortName *string
	Country   *string
	LogoURL   *string
}

func (t *Team) UpdateInfo(u TeamUpdate) error {
	if u.Name != nil {
		if err := validateTeamName(*u.Name); err != nil {
			return err
		}
	}
	if u.ShortName != nil {
		if err := validateShortName(*u.ShortName); err != nil {
			return err
		}
	}

	if u.Name != nil {
		t.name = *u.Name
	}
	if u.ShortName != nil {
		t.shortName = *u.ShortName
	}
	if u.Country != nil {
		t.country = *u.Country
	}
	if u.LogoURL != nil {
		t.logoURL = *u.LogoURL
	}
	t.updatedAt = now()
	return nil
}

func (t *Team) ID() uuid.UUID        { return t.id }
func (t *Team) Name() string         { return t.name }
func (t *Team) ShortName() string    { return t.shortName }
func (t *Team) Country() string      { return t.country }
func (t *Team) LogoURL() string      { return t.logoURL }
func (t *Team) CreatedAt() time.Time { return t.createdAt }
func (t *Team) UpdatedAt() time.Time { return t.updatedAt }
func (t *Team) SquadSize() int       { return len(t.players) }

// Players returns the roster in insertion order. The slice is a copy.
func (t *Team) Players() []*Player {
	out := make([]*Player, len(t.players))
	copy(out, t.players)
	return out
}

func (t *Team) HasPlayer(p *Player) bool {
	if p == nil {
		return false
	}
	return t.HasPlayerWithID(p.id)
}

func (t *Team) HasPlayerWithID(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	for _, member := range t.players {
		if member.id == id {
			return true
		}
	}
	return false
}

func (t *Team) Equal(other *Team) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id == other.id
}

func validateTeamName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "cannot be empty")
	}
	n := utf8.RuneCountInString(name)
	if n < 3 {
		return invalid("name", "must be at least 3 characters long")
	}
	if n > 100 {
		return invalid("name", "cannot exceed 100 characters")
	}
	return nil
}

func validateShortName(shortName string) error {
	if strings.TrimSpace(shortName) == "" {
		return invalid("short_name", "cannot be empty")
	}
	n := utf8.RuneCountInString(shortName)
	if n < 2 {
		return invalid("short_name", "must be at least 2 characters long")
	}
	if n > 3 {
		return invalid("short_name", "cannot exceed 3 characters")
	}
	return nil
}
