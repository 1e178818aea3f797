// Package validation checks config and request structs using go-playground
// validator tags and reports failures as errors.AppError.
//
// Besides the stock tags it registers Cognito-specific ones:
//
//	awsregion       us-east-1, eu-central-1, ...
//	userpoolid      <region>_<suffix>
//	identitypoolid  <region>:<uuid>
//	jwt             three dot-separated base64url segments
package validation
