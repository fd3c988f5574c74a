package handlers

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/vancomm/sweeper/internal/round"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type NewRoundDTO struct {
	Mode string `schema:"mode"`
	Size int    `schema:"size"`
}

func ParseNewRoundDTO(src url.Values) (NewRoundDTO, error) {
	var dto NewRoundDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type Move int

const (
	Reveal Move = iota
	Flag
	Chord
)

func ParseMove(s string) (Move, error) {
	switch s {
	case "reveal":
		return Reveal, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	}
	return 0, fmt.Errorf("unknown move %q", s)
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func ParseMoveDTO(src url.Values) (MoveDTO, error) {
	var dto MoveDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type ResultsDTO struct {
	Mode  *string `schema:"mode"`
	Size  *int32  `schema:"size"`
	Limit int     `schema:"limit"`
}

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
)

func ParseResultsDTO(src url.Values) (ResultsDTO, error) {
	var dto ResultsDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Limit <= 0 {
		dto.Limit = defaultResultsLimit
	}
	dto.Limit = min(dto.Limit, maxResultsLimit)
	return dto, nil
}

// RoundDTO is what every round endpoint answers with.
type RoundDTO struct {
	ID string `json:"id"`
	round.View
}

func NewRoundDTO(id uuid.UUID, c *round.Controller) RoundDTO {
	return RoundDTO{ID: id.String(), View: c.View()}
}

const maxSlotLen = 64

func isSlotChar(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' || c == '-' || c == '_'
}

// ValidSlot reports whether name can be used as a save slot.
func ValidSlot(name string) bool {
	if name == "" || len(name) > maxSlotLen {
		return false
	}
	for _, c := range name {
		if !isSlotChar(c) {
			return false
		}
	}
	return true
}
