package auth

import (
	"context"
	"fmt"
)

// LoginCallback receives the end of a login flow: a non-empty message and a
// nil result on failure, an empty message and the session on success.
type LoginCallback interface {
	CognitoCallback(message string, result any)
}

// MFAHandler is implemented by callbacks that can answer challenges. The
// implementer must call resume with the user's code or the flow stalls.
type MFAHandler interface {
	HandleMFAStep(challengeName string, params ChallengeParameters, resume func(code string))
}

// LoginCallbackFunc adapts a function to LoginCallback.
type LoginCallbackFunc func(message string, result any)

// CognitoCallback implements LoginCallback.
func (f LoginCallbackFunc) CognitoCallback(message string, result any) {
	f(message, result)
}

// Deliver reports outcome to cb. Challenges are forwarded to cb's
// HandleMFAStep when it implements MFAHandler; the answer is resumed with ctx
// and delivered in turn. A challenge reaching a callback without MFAHandler
// is reported as a failure.
func Deliver(ctx context.Context, outcome Outcome, cb LoginCallback) {
	switch o := outcome.(type) {
	case Success:
		cb.CognitoCallback("", o.Result)
	case Failure:
		msg := o.Message
		if msg == "" {
			msg = "login failed"
		}
		cb.CognitoCallback(msg, nil)
	case ChallengeRequired:
		h, ok := cb.(MFAHandler)
		if !ok || o.Resume == nil {
			cb.CognitoCallback(fmt.Sprintf("challenge %s requires an MFA handler", o.Name), nil)
			return
		}
		h.HandleMFAStep(o.Name, o.Parameters, func(code string) {
			Deliver(ctx, o.Resume(ctx, code), cb)
		})
	default:
		cb.CognitoCallback("login produced no outcome", nil)
	}
}
