package handlers

import (
	"fmt"
	"strings"

	"github.com/gorilla/schema"

	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/repository"
	"github.com/vancomm/gridsweep/internal/session"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type CreateNewGameDTO struct {
	Difficulty string `schema:"difficulty"`
	Rows       int    `schema:"rows"`
	Cols       int    `schema:"cols"`
	Hazards    int    `schema:"hazards"`
	Seed       string `schema:"seed"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// Resolve picks the difficulty and validated parameters. Without an explicit
// difficulty, a seed or any of rows/cols/hazards means custom and nothing at
// all means beginner.
func (dto CreateNewGameDTO) Resolve() (mines.Difficulty, mines.GameParams, error) {
	custom := mines.GameParams{Rows: dto.Rows, Cols: dto.Cols, HazardCount: dto.Hazards}
	if dto.Seed != "" {
		p, err := mines.ParseSeed(dto.Seed)
		if err != nil {
			return 0, mines.GameParams{}, err
		}
		custom = *p
	}

	var difficulty mines.Difficulty
	switch {
	case dto.Difficulty != "":
		d, err := mines.ParseDifficulty(dto.Difficulty)
		if err != nil {
			return 0, mines.GameParams{}, err
		}
		difficulty = d
	case dto.Seed != "" || dto.Rows != 0 || dto.Cols != 0 || dto.Hazards != 0:
		difficulty = mines.Custom
	default:
		difficulty = mines.Beginner
	}

	params, err := mines.Resolve(difficulty, custom)
	return difficulty, params, err
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src map[string][]string) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func ParseGameMove(move string) (session.Op, error) {
	switch strings.ToLower(move) {
	case "open", "o":
		return session.Open, nil
	case "flag", "f":
		return session.Flag, nil
	case "chord", "c":
		return session.Chord, nil
	}
	return 0, fmt.Errorf("unknown move %q (want open, flag or chord)", move)
}

type GameSessionDTO struct {
	GameSessionId string               `json:"game_session_id"`
	Difficulty    mines.Difficulty     `json:"difficulty"`
	Board         session.Snapshot     `json:"board"`
	Outcome       *mines.RevealOutcome `json:"outcome,omitempty"`
	Token         string               `json:"token,omitempty"`
}

func NewGameSessionDTO(gs *repository.GameSession, s *session.Session) *GameSessionDTO {
	return &GameSessionDTO{
		GameSessionId: gs.GameSessionId.String(),
		Difficulty:    gs.Difficulty,
		Board:         s.Snapshot(),
	}
}

type PresetDTO struct {
	Difficulty mines.Difficulty `json:"difficulty"`
	mines.GameParams
}

func Presets() []PresetDTO {
	presets := make([]PresetDTO, 0, 3)
	for _, d := range mines.Presets() {
		p, _ := mines.Preset(d)
		presets = append(presets, PresetDTO{Difficulty: d, GameParams: p})
	}
	return presets
}
