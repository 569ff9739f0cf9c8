package encoding

// SetCoresForTests pins the logical core count used by Build and returns a
// function restoring the previous value.
func SetCoresForTests(n int) func() {
	previous := logicalCores
	logicalCores = func() int { return n }
	return func() {
		logicalCores = previous
	}
}
