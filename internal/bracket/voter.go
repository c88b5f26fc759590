package bracket

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type VoterKind string

const (
	VoterRegistered VoterKind = "registered"
	VoterAnonymous  VoterKind = "anonymous"
)

// VoterID identifies whoever votes or joins: either a registered account or an
// anonymous session admitted through an invite. The zero value identifies nobody.
// VoterID is comparable, so == is variant+payload equality.
type VoterID struct {
	kind      VoterKind
	userID    uuid.UUID
	sessionID string
}

func Registered(userID uuid.UUID) VoterID {
	return VoterID{kind: VoterRegistered, userID: userID}
}

func Anonymous(sessionID string) VoterID {
	return VoterID{kind: VoterAnonymous, sessionID: sessionID}
}

func (v VoterID) Kind() VoterKind {
	return v.kind
}

func (v VoterID) IsZero() bool {
	return v.kind == ""
}

func (v VoterID) IsAnonymous() bool {
	return v.kind == VoterAnonymous
}

// UserID returns the account id of a registered voter.
func (v VoterID) UserID() (uuid.UUID, bool) {
	if v.kind != VoterRegistered {
		return uuid.Nil, false
	}
	return v.userID, true
}

// SessionID returns the session id of an anonymous voter.
func (v VoterID) SessionID() (string, bool) {
	if v.kind != VoterAnonymous {
		return "", false
	}
	return v.sessionID, true
}

func (v VoterID) String() string {
	switch v.kind {
	case VoterRegistered:
		return v.userID.String()
	case VoterAnonymous:
		return v.sessionID
	default:
		return ""
	}
}

type voterJSON struct {
	Type VoterKind `json:"type"`
	ID   string    `json:"id"`
}

func (v VoterID) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(voterJSON{Type: v.kind, ID: v.String()})
}

func (v *VoterID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = VoterID{}
		return nil
	}
	var raw voterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case VoterRegistered:
		id, err := uuid.Parse(raw.ID)
		if err != nil {
			return fmt.Errorf("registered voter id: %w", err)
		}
		*v = Registered(id)
	case VoterAnonymous:
		if raw.ID == "" {
			return fmt.Errorf("anonymous voter id is empty")
		}
		*v = Anonymous(raw.ID)
	default:
		return fmt.Errorf("unknown voter type %q", raw.Type)
	}
	return nil
}
