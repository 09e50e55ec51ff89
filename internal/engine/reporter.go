package engine

// Reporter receives progress events as the pipeline moves through its
// phases. The CLI renders them to the terminal; library callers and tests
// usually pass NopReporter.
type Reporter interface {
	// Step announces the start of a unit of work.
	Step(msg string)
	// Success announces a completed, observable side effect.
	Success(msg string)
}

type nopReporter struct{}

func (nopReporter) Step(string)    {}
func (nopReporter) Success(string) {}

// NopReporter returns a Reporter that discards all events.
func NopReporter() Reporter {
	return nopReporter{}
}
