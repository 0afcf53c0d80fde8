package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy of the Errno carrying a more specific message.
// The code is preserved so callers can still classify the failure.
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrTokenInvalid     = Errno{Code: 10003, Message: "Token invalid"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
	ErrValidation       = Errno{Code: 10005, Message: "Validation error"}
	// ErrConflict 事务因并发冲突中止 (serialization failure / deadlock victim)，调用方可重试
	ErrConflict = Errno{Code: 10006, Message: "Concurrent update conflict, please retry"}
)

// Auth Errors (20100+)
var (
	ErrUserNotFound      = Errno{Code: 20101, Message: "User not found"}
	ErrPasswordIncorrect = Errno{Code: 20102, Message: "Password incorrect"}
	ErrUserAlreadyExist  = Errno{Code: 20103, Message: "Username or email already exists"}
	ErrUserNotVerified   = Errno{Code: 20104, Message: "User account is not verified"}
	ErrUserDisabled      = Errno{Code: 20105, Message: "User account is disabled"}
)

// Account Errors (20200+)
var (
	ErrAccountNotFound            = Errno{Code: 20201, Message: "Account not found"}
	ErrSourceAccountNotFound      = Errno{Code: 20202, Message: "Source account not found"}
	ErrDestinationAccountNotFound = Errno{Code: 20203, Message: "Destination account not found"}
	ErrUnauthorized               = Errno{Code: 20204, Message: "Unauthorized access to account"}
	ErrAccountNumberTaken         = Errno{Code: 20205, Message: "Account number already exists. Please choose a different number."}
	ErrAccountInactive            = Errno{Code: 20206, Message: "Account is not active"}
	ErrNonZeroBalance             = Errno{Code: 20207, Message: "Cannot delete account with non-zero balance"}
)

// Transaction Errors (20300+)
var (
	ErrInvalidPin        = Errno{Code: 20301, Message: "Invalid PIN. Please enter the correct PIN."}
	ErrInsufficientFunds = Errno{Code: 20302, Message: "Insufficient balance"}
	ErrSameAccount       = Errno{Code: 20303, Message: "Cannot transfer to the same account"}
)
