package football

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minPlayerAge    = 16
	minJerseyNumber = 1
	maxJerseyNumber = 99
)

type Player struct {
	id           uuid.UUID
	name         string
	dateOfBirth  time.Time
	nationality  string
	position     Position
	jerseyNumber string
	photoURL     string
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPlayer(name string, dateOfBirth time.Time, nationality string, position Position, jerseyNumber string) (*Player, error) {
	t := now()
	dateOfBirth = dateOnly(dateOfBirth)

	if err := validatePlayerName(name); err != nil {
		return nil, err
	}
	if err := validateDateOfBirth(dateOfBirth, t); err != nil {
		return nil, err
	}
	if err := validatePosition(position); err != nil {
		return nil, err
	}
	if err := validateJerseyNumber(jerseyNumber); err != nil {
		return nil, err
	}

	return &Player{
		id:           newID(),
		name:         name,
		dateOfBirth:  dateOfBirth,
		nationality:  nationality,
		position:     position,
		jerseyNumber: jerseyNumber,
		createdAt:    t,
		updatedAt:    t,
	}, nil
}

// PlayerUpdate carries a partial update; nil fields are left untouched.
type PlayerUpdate struct {
	Name         *string
	DateOfBirth  *time.Time
	Nationality  *string
	Position     *Position
	JerseyNumber *string
}

// UpdateInfo validates every supplied field before applying any of them.
func (p *Player) UpdateInfo(u PlayerUpdate) error {
	t := now()

	if u.Name != nil {
		if err := validatePlayerName(*u.Name); err != nil {
			return err
		}
	}
	var dob time.Time
	if u.DateOfBirth != nil {
		dob = dateOnly(*u.DateOfBirth)
		if err := validateDateOfBirth(dob, t); err != nil {
			return err
		}
	}
	if u.Position != nil {
		if err := validatePosition(*u.Position); err != nil {
			return err
		}
	}
	if u.JerseyNumber != nil {
		if err := validateJerseyNumber(*u.JerseyNumber); err != nil {
			return err
		}
	}

	if u.Name != nil {
		p.name = *u.Name
	}
	if u.DateOfBirth != nil {
		p.dateOfBirth = dob
	}
	if u.Nationality != nil {
		p.nationality = *u.Nationality
	}
	if u.Position != nil {
		p.position = *u.Position
	}
	if u.JerseyNumber != nil {
		p.jerseyNumber = *u.JerseyNumber
	}
	p.updatedAt = t
	return nil
}

// SetPhotoURL replaces the photo URL; an empty string clears it.
func (p *Player) SetPhotoURL(url string) {
	p.photoURL = url
	p.updatedAt = now()
}

func (p *Player) ID() uuid.UUID          { return p.id }
func (p *Player) Name() string           { return p.name }
func (p *Player) DateOfBirth() time.Time { return p.dateOfBirth }
func (p *Player) Nationality() string    { return p.nationality }
func (p *Player) Position() Position     { return p.position }
func (p *Player) JerseyNumber() string   { return p.jerseyNumber }
func (p *Player) PhotoURL() string       { return p.photoURL }
func (p *Player) CreatedAt() time.Time   { return p.createdAt }
func (p *Player) UpdatedAt() time.Time   { return p.updatedAt }

// Age is the number of completed years as of today.
func (p *Player) Age() int {
	return ageAt(p.dateOfBirth, now())
}

// Equal compares identity, not attributes.
func (p *Player) Equal(other *Player) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.id == other.id
}

func ageAt(dateOfBirth, at time.Time) int {
	if dateOfBirth.IsZero() {
		return 0
	}
	age := at.Year() - dateOfBirth.Year()
	if at.Month() < dateOfBirth.Month() || (at.Month() == dateOfBirth.Month() && at.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validatePlayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "cannot be empty")
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return invalid("name", "must be at least 2 characters long")
	}
	if n > 100 {
		return invalid("name", "cannot exceed 100 characters")
	}
	return nil
}

func validateDateOfBirth(dob, at time.Time) error {
	if dob.IsZero() {
		return invalid("date_of_birth", "must be specified")
	}
	if dob.After(dateOnly(at)) {
		return invalid("date_of_birth", "cannot be in the future")
	}
	if ageAt(dob, at) < minPlayerAge {
		return invalid("date_of_birth", "player must be at least 16 years old")
	}
	return nil
}

func validatePosition(p Position) error {
	if !p.Valid() {
		return invalid("position", "unknown position "+string(p))
	}
	return nil
}

func validateJerseyNumber(jersey string) error {
	if strings.TrimSpace(jersey) == "" {
		return invalid("jersey_number", "cannot be empty")
	}
	n, err := strconv.Atoi(jersey)
	if err != nil {
		return invalid("jersey_number", "must be a valid number")
	}
	if n < minJerseyNumber || n > maxJerseyNumber {
		return invalid("jersey_number", "must be between 1 and 99")
	}
	return nil
}
