package screening

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/types"
)

// ErrGenerationUnavailable marks a screening that could not be produced: the
// model failed, timed out, or returned something unusable.
var ErrGenerationUnavailable = errors.New("generation unavailable")

type Request struct {
	Transcript []*schema.Message
	Record     types.Record
}

type Result struct {
	// Instructions are the system messages sent with the two calls, in order.
	Instructions []*schema.Message
	Questions    string
	Confidence   string
	Reply        string
}

type Generator interface {
	Screen(ctx context.Context, req *Request) (*Result, error)
}
