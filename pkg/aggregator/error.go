package aggregator

// errorTimeout means the polling budget ran out before the stack reached an
// accepted terminal state.
type errorTimeout string

// Error satisfies the error interface
func (e errorTimeout) Error() string {
	return string(e)
}

// Timeout defines the behavior of this error
func (e errorTimeout) Timeout() bool {
	return true
}
