package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// Suggestions contains default fix suggestions for each error code.
var Suggestions = map[string]string{
	ErrCodeIdentityDuplicate: "The username is already taken. Pick a different username or log in instead.",
	ErrCodeIdentityNotFound:  "No identity exists with that username. Check the spelling or register it first.",
	ErrCodePasswordWeak: "Passwords must be at least 8 characters with at least 1 digit and 1 special character. " +
		"The policy can be adjusted in the registration policy file.",
	ErrCodeCredentialsBad:   "The username or password is incorrect. Credentials are never partially matched.",
	ErrCodeSessionNotActive: "The identity is not logged in. Run: wardkeep login",
	ErrCodePermissionDenied: "The identity does not hold the required access level on this resource. " +
		"An administrator can add it with: wardkeep grant",
	ErrCodeAccessLevelUnknown: "Valid access levels are: view, add, change, delete (read/write/update are accepted aliases).",
	ErrCodeResourceUnknown:    "Valid resources are: note, task.",
	ErrCodeDynamoDBAccessDenied: "Ensure your IAM policy grants DynamoDB access to the Wardkeep tables. " +
		"Check the table names in your config file.",
	ErrCodeDynamoDBTableNotFound: "The DynamoDB table does not exist. " +
		"Create the Wardkeep tables before selecting the dynamodb backend.",
	ErrCodeDynamoDBThrottled:       "DynamoDB throughput exceeded. Wait a moment and retry, or increase table capacity.",
	ErrCodeDynamoDBConditionFailed: "The DynamoDB conditional check failed. The item may have been modified by another process.",
}

// GetSuggestion returns the default suggestion for an error code.
// Returns empty string if no suggestion is defined.
func GetSuggestion(code string) string {
	return Suggestions[code]
}

// WrapDynamoDBError examines a DynamoDB error and returns a WardError.
// Classification prefers the typed API error code from smithy; the message
// text is only consulted when no API error is attached (e.g. transport
// failures).
func WrapDynamoDBError(err error, table, operation string) WardError {
	if err == nil {
		return nil
	}

	code := classifyDynamoDBError(err)

	var message string
	switch code {
	case ErrCodeDynamoDBTableNotFound:
		message = fmt.Sprintf("DynamoDB table not found: %s", table)
	case ErrCodeDynamoDBThrottled:
		message = fmt.Sprintf("DynamoDB throughput exceeded for table: %s", table)
	case ErrCodeDynamoDBConditionFailed:
		message = fmt.Sprintf("DynamoDB conditional check failed for table: %s", table)
	default:
		message = fmt.Sprintf("DynamoDB error for table %s during %s: %v", table, operation, err)
	}

	we := New(code, message, Suggestions[code], err)
	we = WithContext(we, "table", table)
	return WithContext(we, "operation", operation)
}

// classifyDynamoDBError maps an AWS SDK error to a Wardkeep storage code.
func classifyDynamoDBError(err error) string {
	var ae smithy.APIError
	if stderrors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ResourceNotFoundException":
			return ErrCodeDynamoDBTableNotFound
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return ErrCodeDynamoDBThrottled
		case "ConditionalCheckFailedException":
			return ErrCodeDynamoDBConditionFailed
		case "AccessDeniedException", "UnrecognizedClientException":
			return ErrCodeDynamoDBAccessDenied
		}
	}

	// Fallback for errors without a typed API code.
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "resourcenotfound"):
		return ErrCodeDynamoDBTableNotFound
	case strings.Contains(errStr, "throttl") || strings.Contains(errStr, "throughput"):
		return ErrCodeDynamoDBThrottled
	case strings.Contains(errStr, "conditionalcheckfailed"):
		return ErrCodeDynamoDBConditionFailed
	}
	return ErrCodeDynamoDBAccessDenied
}
