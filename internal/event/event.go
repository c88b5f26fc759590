// Package event defines the messages pushed to live tournament viewers.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire tags. Clients switch on these, so they never change.
const (
	TypeVoteCast            = "vote_cast"
	TypeMatchCompleted      = "match_completed"
	TypeRoundCompleted      = "round_completed"
	TypeTournamentCompleted = "tournament_completed"
	TypeParticipantJoined   = "participant_joined"
	TypeTournamentPaused    = "tournament_paused"
	TypeTournamentResumed   = "tournament_resumed"
	TypeError               = "error"
)

// Event is a tournament state change. The set of implementations is closed.
type Event interface {
	Type() string
	isEvent()
}

type VoteCast struct {
	MatchID     string         `json:"match_id"`
	VoteCounts  map[string]int `json:"vote_counts"`
	TotalNeeded int            `json:"total_needed"`
}

type MatchCompleted struct {
	MatchID    string         `json:"match_id"`
	WinnerID   uuid.UUID      `json:"winner_id"`
	FinalVotes map[string]int `json:"final_votes"`
}

// RoundCompleted reports the closed round and how many matches the next round has.
type RoundCompleted struct {
	RoundNumber      int `json:"round_number"`
	NextRoundMatches int `json:"next_round_matches"`
}

type TournamentCompleted struct {
	WinnerID uuid.UUID `json:"winner_id"`
}

type ParticipantJoined struct {
	DisplayName      string `json:"display_name"`
	ParticipantCount int    `json:"participant_count"`
}

type TournamentPaused struct{}

type TournamentResumed struct{}

type Error struct {
	Message string `json:"message"`
}

func (VoteCast) Type() string            { return TypeVoteCast }
func (MatchCompleted) Type() string      { return TypeMatchCompleted }
func (RoundCompleted) Type() string      { return TypeRoundCompleted }
func (TournamentCompleted) Type() string { return TypeTournamentCompleted }
func (ParticipantJoined) Type() string   { return TypeParticipantJoined }
func (TournamentPaused) Type() string    { return TypeTournamentPaused }
func (TournamentResumed) Type() string   { return TypeTournamentResumed }
func (Error) Type() string               { return TypeError }

func (VoteCast) isEvent()            {}
func (MatchCompleted) isEvent()      {}
func (RoundCompleted) isEvent()      {}
func (TournamentCompleted) isEvent() {}
func (ParticipantJoined) isEvent()   {}
func (TournamentPaused) isEvent()    {}
func (TournamentResumed) isEvent()   {}
func (Error) isEvent()               {}

// Encode renders e as a tagged JSON object: the variant's fields plus "type".
func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("encode nil event")
	}
	tag := envelope{Type: e.Type()}
	switch v := e.(type) {
	case VoteCast:
		return json.Marshal(struct {
			envelope
			VoteCast
		}{tag, v})
	case MatchCompleted:
		return json.Marshal(struct {
			envelope
			MatchCompleted
		}{tag, v})
	case RoundCompleted:
		return json.Marshal(struct {
			envelope
			RoundCompleted
		}{tag, v})
	case TournamentCompleted:
		return json.Marshal(struct {
			envelope
			TournamentCompleted
		}{tag, v})
	case ParticipantJoined:
		return json.Marshal(struct {
			envelope
			ParticipantJoined
		}{tag, v})
	case TournamentPaused, TournamentResumed:
		return json.Marshal(tag)
	case Error:
		return json.Marshal(struct {
			envelope
			Error
		}{tag, v})
	default:
		return nil, fmt.Errorf("unknown event %T", e)
	}
}

type envelope struct {
	Type string `json:"type"`
}

// Decode parses a message produced by Encode.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var e Event
	var err error
	switch env.Type {
	case TypeVoteCast:
		var v VoteCast
		err = json.Unmarshal(data, &v)
		e = v
	case TypeMatchCompleted:
		var v MatchCompleted
		err = json.Unmarshal(data, &v)
		e = v
	case TypeRoundCompleted:
		var v RoundCompleted
		err = json.Unmarshal(data, &v)
		e = v
	case TypeTournamentCompleted:
		var v TournamentCompleted
		err = json.Unmarshal(data, &v)
		e = v
	case TypeParticipantJoined:
		var v ParticipantJoined
		err = json.Unmarshal(data, &v)
		e = v
	case TypeTournamentPaused:
		e = TournamentPaused{}
	case TypeTournamentResumed:
		e = TournamentResumed{}
	case TypeError:
		var v Error
		err = json.Unmarshal(data, &v)
		e = v
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return e, nil
}
