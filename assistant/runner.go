package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrBusy is returned when a turn cannot be accepted before the submit
// timeout expires.
var ErrBusy = errors.New("assistant is busy")

// ErrClosed is returned after the runner has shut down.
var ErrClosed = errors.New("assistant runner closed")

type turnRequest struct {
	input string
	reply chan turnResult
}

type turnResult struct {
	text   string
	action Action
}

// Runner serializes turns through a single session on one worker goroutine.
// Turns never interleave; a caller that gives up waiting does not cancel the
// turn in flight, and its reply is simply dropped.
type Runner struct {
	assistant *Assistant
	session   *Session
	requests  chan turnRequest
	done      chan struct{}
	log       zerolog.Logger
}

// NewRunner starts the worker for one session.
func NewRunner(a *Assistant, session *Session, logger zerolog.Logger) *Runner {
	r := &Runner{
		assistant: a,
		session:   session,
		requests:  make(chan turnRequest),
		done:      make(chan struct{}),
		log:       logger,
	}
	go r.loop()
	return r
}

func (r *Runner) loop() {
	ctx := context.Background()
	for req := range r.requests {
		text, action := r.assistant.ProcessTurn(ctx, r.session, req.input)
		// Buffered: the reply lands even if the caller timed out.
		req.reply <- turnResult{text: text, action: action}
		if action == ActionExit {
			break
		}
	}
	close(r.done)
}

// Submit queues one turn and waits up to timeout for its reply. The timeout
// bounds the caller's wait only; the worker finishes the turn regardless.
func (r *Runner) Submit(input string, timeout time.Duration) (string, Action, error) {
	req := turnRequest{input: input, reply: make(chan turnResult, 1)}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r.requests <- req:
	case <-r.done:
		return "", ActionNone, ErrClosed
	case <-timer.C:
		return "", ActionNone, ErrBusy
	}

	select {
	case res := <-req.reply:
		return res.text, res.action, nil
	case <-timer.C:
		r.log.Warn().Msg("turn still running past caller timeout")
		return "", ActionNone, ErrBusy
	}
}

// Close stops accepting turns and waits for the in-flight turn to finish.
func (r *Runner) Close() {
	select {
	case <-r.done:
		return
	default:
	}
	close(r.requests)
	<-r.done
}
