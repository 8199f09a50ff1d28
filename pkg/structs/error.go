package structs

type notFound interface {
	NotFound() bool
}

// ErrorNotFound returns true if err indicates a missing remote item rather
// than an operational failure.
func ErrorNotFound(err error) bool {
	if e, ok := err.(notFound); ok {
		return e.NotFound()
	}
	return false
}

type timeout interface {
	Timeout() bool
}

// ErrorTimeout returns true if err indicates an exhausted polling budget,
// as opposed to a recognized terminal failure state.
func ErrorTimeout(err error) bool {
	if e, ok := err.(timeout); ok {
		return e.Timeout()
	}
	return false
}
