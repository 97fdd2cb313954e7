package agent

import (
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/types"
)

type State struct {
	Stage      types.Stage       `json:"stage" jsonschema:"enum=name,enum=email,enum=phone,enum=experience,enum=position,enum=location,enum=tech_stack,enum=end"`
	Candidate  types.Record      `json:"candidate"`
	Transcript []*schema.Message `json:"transcript"`
	Greeted    bool              `json:"greeted"`
}

// Clone copies the state so a turn can be applied without touching the
// caller's value. Messages are shared; they are never modified once appended.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = make([]*schema.Message, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	return &out
}

type Request struct {
	State     *State `json:"state"`
	UserInput string `json:"user_input"`
}

type Response struct {
	// Replies are the assistant messages produced by this turn, in order.
	Replies []string `json:"replies,omitempty"`
	// State is nil once the candidate has withdrawn.
	State      *State            `json:"state,omitempty"`
	Terminated bool              `json:"terminated,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// View returns what the candidate sees after the turn.
func (r *Response) View() []*schema.Message {
	if r.State != nil {
		return Visible(r.State.Transcript)
	}
	out := make([]*schema.Message, 0, len(r.Replies))
	for _, reply := range r.Replies {
		out = append(out, schema.AssistantMessage(reply, nil))
	}
	return out
}
