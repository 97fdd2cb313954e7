package agent

import (
	"github.com/cloudwego/eino/schema"
)

// Visible returns the transcript without system messages, in order.
func Visible(transcript []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(transcript))
	for _, m := range transcript {
		if m == nil || m.Role == schema.System {
			continue
		}
		out = append(out, m)
	}
	return out
}

func appendTranscript(transcript []*schema.Message, msgs ...*schema.Message) []*schema.Message {
	for _, msg := range msgs {
		if msg != nil {
			transcript = append(transcript, msg)
		}
	}
	return transcript
}
