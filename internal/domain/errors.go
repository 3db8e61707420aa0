package domain

import "errors"

// Kind classifies a domain error independently of its wire code.
type Kind int

const (
	KindMissingField Kind = iota + 1
	KindMultipleFieldsMissing
	KindInvalidFormat
	KindNotFound
	KindConflict
	KindSemanticViolation
	KindDateTime
	KindInternal
)

// Code is the stable machine-readable error code returned to API clients.
type Code string

// Error is a named, client-facing failure. Values are compared with errors.Is.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	// Field presence
	ErrMissingFields          = newError("MISSING_FIELDS", KindMultipleFieldsMissing, "Required fields are missing, please refer API doc")
	ErrMissingCreatorID       = newError("MISSING_CREATOR_ID", KindMissingField, "Creator ID (user_id) is required to perform split creation but not provided")
	ErrMissingExpenseAmount   = newError("MISSING_EXPENSE_AMOUNT", KindMissingField, "Expense amount is required but not provided")
	ErrMissingTitle           = newError("MISSING_TITLE", KindMissingField, "Title is required but not provided")
	ErrMissingSplitMethod     = newError("MISSING_SPLIT_METHOD", KindMissingField, "Split method is required but not provided")
	ErrMissingParticipantList = newError("MISSING_PARTICIPANTS_ARRAY", KindMissingField, "Array of participation objects is required but not provided")
	ErrMissingExpenseDateTime = newError("MISSING_EXPENSE_DATE_TIME", KindMissingField, "Expense date and time is required but not provided")
	ErrMissingFirstName       = newError("MISSING_FIRST_NAME", KindMissingField, "First name is required but not provided")
	ErrMissingLastName        = newError("MISSING_LAST_NAME", KindMissingField, "Last name is required but not provided")
	ErrMissingMobile          = newError("MISSING_MOBILE", KindMissingField, "Mobile number is required but not provided")
	ErrMissingEmail           = newError("MISSING_EMAIL", KindMissingField, "Email is required but not provided")
	ErrMissingEmailAndID      = newError("MISSING_EMAIL_AND_ID", KindMissingField, "Email or ID is required to fetch user")
	ErrMissingUserID          = newError("MISSING_USER_ID", KindMissingField, "User ID is required")

	// Formats
	ErrInvalidIDFormat         = newError("INVALID_ID_FORMAT", KindInvalidFormat, "Invalid ID format")
	ErrInvalidEmail            = newError("INVALID_EMAIL", KindInvalidFormat, "Incorrect Email")
	ErrInvalidMobileNumber     = newError("INVALID_MOBILE_NUMBER", KindInvalidFormat, "Incorrect Mobile Number")
	ErrInvalidExpenseAmount    = newError("INVALID_EXPENSE_AMOUNT", KindInvalidFormat, "Expense amount is invalid. Please enter a valid amount in between 0.001 to 9999999999.999")
	ErrInvalidExactSplitAmount = newError("INVALID_EXACT_SPLIT_AMOUNT", KindInvalidFormat, "Exact split amount is invalid. Please enter a valid amount in between 0.001 to 9999999999.999")
	ErrInvalidSplitPercentage  = newError("INVALID_SPLIT_PERCENTAGE", KindInvalidFormat, "Split value should be greater than 0 and at most 100 while using percentage split method")
	ErrInvalidSplitMethod      = newError("INVALID_SPLIT_METHOD", KindInvalidFormat, "Invalid split method specified")
	ErrInvalidParticipantID    = newError("INVALID_PARTICIPANT_ID", KindInvalidFormat, "Incorrect participant ID")
	ErrInvalidRequestBody      = newError("INVALID_REQUEST_BODY", KindInvalidFormat, "Request body is not valid JSON")

	// Expense semantics
	ErrMissingParticipants      = newError("MISSING_PARTICIPANTS", KindSemanticViolation, "At least one participation is required")
	ErrCreatorMustParticipate   = newError("CREATOR_MUST_PARTICIPATE", KindSemanticViolation, "The creator of the expenses must participate")
	ErrDuplicateParticipants    = newError("DUPLICATE_PARTICIPANTS", KindSemanticViolation, "Duplicate participant IDs are not allowed")
	ErrUnwantedSplitValue       = newError("UNWANTED_SPLIT_VALUE_FOR_EQUAL_METHOD", KindSemanticViolation, `Split value should not be provided when the split method is "equal"`)
	ErrInvalidPercentageTotal   = newError("INVALID_PERCENTAGE_TOTAL", KindSemanticViolation, `Sum of all participants split_value must equal to 100 while using "percentage" split method`)
	ErrInvalidEqualSplit        = newError("INVALID_EQUAL_SPLIT", KindSemanticViolation, "The expense amount is too small to be split equally among all participants")
	ErrMismatchTotalExactAmount = newError("MISMATCH_TOTAL_EXACT_AMOUNT", KindSemanticViolation, `Sum of all participants split_value must equal to expense amount while using "exact" split method`)

	// Lookups
	ErrUserNotFound        = newError("USER_NOT_FOUND", KindNotFound, "User not found")
	ErrParticipantNotFound = newError("PARTICIPANT_NOT_FOUND", KindNotFound, "One or more participants are not registered")

	// Uniqueness
	ErrEmailAlreadyExists  = newError("EMAIL_ALREADY_EXISTS", KindConflict, "Email already exists")
	ErrMobileAlreadyExists = newError("MOBILE_ALREADY_EXISTS", KindConflict, "Mobile number already exists")

	// Dates
	ErrInvalidDateFormat        = newError("INVALID_DATE_FORMAT", KindDateTime, "Invalid date format. Expected format: YYYY-MM-DD")
	ErrInvalidDateValue         = newError("INVALID_DATE_VALUE", KindDateTime, "Invalid date value")
	ErrFutureDateNotAllowed     = newError("FUTURE_DATE_NOT_ALLOWED", KindDateTime, "Future dates are not allowed")
	ErrInvalidDateTimeFormat    = newError("INVALID_DATE_TIME_FORMAT", KindDateTime, "Invalid date-time format. Expected format: YYYY-MM-DDTHH:mm:ss")
	ErrInvalidDateTimeValue     = newError("INVALID_DATE_TIME_VALUE", KindDateTime, "Invalid date-time value")
	ErrFutureDateTimeNotAllowed = newError("FUTURE_DATE_TIME_NOT_ALLOWED", KindDateTime, "Future date time is not allowed")

	ErrInternal = newError("INTERNAL_SERVER_ERROR", KindInternal, "Internal Server Error")
)
