package userpool

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	apperrors "github.com/kbukum/cognitokit/errors"
)

// ClassifyAPIError maps an AWS API error onto an AppError. service names the
// upstream ("cognito-idp", "cognito-identity") and op the failed call.
func ClassifyAPIError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(op).WithCause(err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotAuthorizedException", "UserNotFoundException", "UserNotConfirmedException",
			"PasswordResetRequiredException":
			return apperrors.Unauthorized(apiErr.ErrorMessage()).WithCause(err)
		case "TooManyRequestsException", "LimitExceededException", "TooManyFailedAttemptsException":
			return apperrors.RateLimited().WithCause(err)
		case "CodeMismatchException", "ExpiredCodeException":
			return apperrors.InvalidInput("code", apiErr.ErrorMessage()).WithCause(err)
		case "InvalidPasswordException":
			return apperrors.InvalidInput("password", apiErr.ErrorMessage()).WithCause(err)
		case "ResourceNotFoundException":
			return apperrors.NotFound("resource", op).WithCause(err)
		}
	}
	return apperrors.ExternalServiceError(service, err)
}

func classify(op string, err error) error {
	return ClassifyAPIError("cognito-idp", op, err)
}
