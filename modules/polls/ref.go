package polls

import "encoding/json"

// RefKind tags every component custom id this module owns. Anything without
// this exact kind, including whatever native poll feature the transport may
// grow, is not ours and the router ignores it.
const RefKind = "custom-poll"

const (
	ActionVote      = "vote"
	ActionAddOption = "add-option"
)

// Ref is the discriminated poll reference carried on message components and
// modals. It is the only coupling between a published message and the engine.
type Ref struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	PollId string `json:"poll_id"`
}

func NewRef(action, pollId string) Ref {
	return Ref{Kind: RefKind, Action: action, PollId: pollId}
}

func (r Ref) Encode() string {
	data, _ := json.Marshal(r)
	return string(data)
}

// DecodeRef parses a custom id. The second return is false for anything that
// is not a well-formed reference of our kind.
func DecodeRef(source string) (Ref, bool) {
	var r Ref
	if err := json.Unmarshal([]byte(source), &r); err != nil {
		return Ref{}, false
	}
	if r.Kind != RefKind || r.PollId == "" {
		return Ref{}, false
	}
	return r, true
}
