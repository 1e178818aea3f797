package auth

import (
	"context"
	"fmt"
)

// Outcome is the result of one step of a login flow.
// The concrete types are Success, Failure and ChallengeRequired.
type Outcome interface {
	outcome()
}

// Success ends a flow. Result is typically a *userpool.Session.
type Success struct {
	Result any
}

// Failure ends a flow with a human-readable message.
type Failure struct {
	Message string
	Err     error
}

// ResumeFunc answers a challenge with the code the user entered and returns
// the next Outcome.
type ResumeFunc func(ctx context.Context, code string) Outcome

// ChallengeRequired pauses a flow until Resume is called. A flow whose
// challenge is never answered stays paused; no timeout is imposed here.
type ChallengeRequired struct {
	Name       string
	Parameters ChallengeParameters
	Resume     ResumeFunc
}

func (Success) outcome()           {}
func (Failure) outcome()           {}
func (ChallengeRequired) outcome() {}

// Fail builds a Failure from err, using its text as the message.
func Fail(err error) Failure {
	if err == nil {
		return Failure{Message: "unknown error"}
	}
	return Failure{Message: err.Error(), Err: err}
}

// Error returns the failure as an error.
func (f Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying error, if any.
func (f Failure) Unwrap() error {
	return f.Err
}

// Well-known challenge names returned by Cognito.
const (
	ChallengeSMSMFA           = "SMS_MFA"
	ChallengeSoftwareTokenMFA = "SOFTWARE_TOKEN_MFA"
	ChallengeEmailOTP         = "EMAIL_OTP"
	ChallengeNewPassword      = "NEW_PASSWORD_REQUIRED"
	ChallengeSelectMFAType    = "SELECT_MFA_TYPE"
)

// ChallengeParameters are the parameters Cognito attached to a challenge.
type ChallengeParameters map[string]string

// DeliveryDestination is the masked phone number or email the code was sent to.
func (p ChallengeParameters) DeliveryDestination() string {
	return p["CODE_DELIVERY_DESTINATION"]
}

// DeliveryMedium is SMS or EMAIL.
func (p ChallengeParameters) DeliveryMedium() string {
	return p["CODE_DELIVERY_DELIVERY_MEDIUM"]
}

// Describe returns a prompt-friendly description of where the code went.
func (c ChallengeRequired) Describe() string {
	dest := c.Parameters.DeliveryDestination()
	if dest == "" {
		return fmt.Sprintf("%s challenge", c.Name)
	}
	return fmt.Sprintf("%s code sent via %s to %s", c.Name, c.Parameters.DeliveryMedium(), dest)
}
