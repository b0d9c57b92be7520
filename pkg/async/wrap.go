package async

// ErrAble runs fn on its own goroutine and delivers its error on the
// returned channel, so callers can select against signals or timeouts.
func ErrAble(fn func() error) <-chan error {
	ch := make(chan error)
	go func() {
		ch <- fn()
		close(ch)
	}()
	return ch
}
