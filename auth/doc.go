// Package auth defines the contract between login flows and their callers.
//
// A login attempt ends in an Outcome: Success, Failure, or ChallengeRequired
// when Cognito asks for another factor. Callers either switch on the Outcome
// directly, or hand it to Deliver, which drives the callback-style contract:
//
//	LoginCallback.CognitoCallback(message, result)   exactly once per attempt
//	MFAHandler.HandleMFAStep(name, params, resume)   optional, per challenge
//
// Token accessors report through TokenResult, or through a TokenCallback
// that receives a nil pointer when no token is available.
package auth
