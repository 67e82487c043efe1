package dispatch

import (
	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/errors"
)

// Status is the final state of one call.
type Status uint8

const (
	// StatusSuccess means the handler ran and its results were encoded.
	StatusSuccess Status = iota
	// StatusRejected means the handler refused the call with a reason.
	StatusRejected
	// StatusFault means the call failed before or around the handler.
	StatusFault
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "ok"
	case StatusRejected:
		return "user_error"
	case StatusFault:
		return "fault"
	default:
		return "unknown"
	}
}

// ReturnCode is the numeric call status reported to a contract caller.
type ReturnCode int

const (
	ReturnOk                     ReturnCode = 0
	ReturnFunctionNotFound       ReturnCode = 1
	ReturnFunctionWrongSignature ReturnCode = 2
	ReturnUserError              ReturnCode = 4
	ReturnExecutionFailed        ReturnCode = 10
)

func (c ReturnCode) String() string {
	switch c {
	case ReturnOk:
		return "ok"
	case ReturnFunctionNotFound:
		return "function not found"
	case ReturnFunctionWrongSignature:
		return "wrong signature for function"
	case ReturnUserError:
		return "user error"
	case ReturnExecutionFailed:
		return "execution failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of Dispatcher.Call. Exactly one of Results,
// Reason or Err is meaningful, according to Status.
type Outcome struct {
	Err     error
	CallID  string
	Reason  string
	Results args.ArgumentList
	Status  Status
}

func success(results args.ArgumentList) Outcome {
	return Outcome{Status: StatusSuccess, Results: results}
}

func rejected(reason string) Outcome {
	return Outcome{Status: StatusRejected, Reason: reason}
}

func fault(err error) Outcome {
	return Outcome{Status: StatusFault, Err: err}
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// ReturnCode maps the outcome onto the caller-facing status code.
func (o Outcome) ReturnCode() ReturnCode {
	switch o.Status {
	case StatusSuccess:
		return ReturnOk
	case StatusRejected:
		return ReturnUserError
	}
	switch errors.KindOf(o.Err) {
	case errors.KindUnknownEndpoint:
		return ReturnFunctionNotFound
	case errors.KindArgumentCountMismatch, errors.KindArgumentDecode:
		return ReturnFunctionWrongSignature
	default:
		return ReturnExecutionFailed
	}
}

// ReturnData is what the caller receives: the result slots on success and
// the reason as a single buffer on rejection.
func (o Outcome) ReturnData() [][]byte {
	switch o.Status {
	case StatusSuccess:
		return o.Results
	case StatusRejected:
		return [][]byte{[]byte(o.Reason)}
	default:
		if o.Err != nil {
			return [][]byte{[]byte(o.Err.Error())}
		}
		return nil
	}
}
