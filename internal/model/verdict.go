package model

// Verdict is the final, six-way outcome of judging one submission.
type Verdict string

const (
	Accepted          Verdict = "Accepted"
	WrongAnswer       Verdict = "Wrong Answer"
	CompilationError  Verdict = "Compilation Error"
	RuntimeError      Verdict = "Runtime Error"
	TimeLimitExceeded Verdict = "Time Limit Exceeded"
	OutOfMemory       Verdict = "Out Of Memory"
)

// statusCode fixes the integer the HTTP surface reports alongside each
// Verdict's human string, in the enumeration's declared order.
var statusCode = map[Verdict]int{
	Accepted:          1,
	WrongAnswer:       2,
	CompilationError:  3,
	RuntimeError:      4,
	TimeLimitExceeded: 5,
	OutOfMemory:       6,
}

// StatusCode returns the Verdict's fixed integer code.
func (v Verdict) StatusCode() int {
	return statusCode[v]
}
