package port

// UsageMeter tracks how many files the free tier has processed today.
// Counts reset at a fixed daily boundary. Pro sessions bypass the meter.
type UsageMeter interface {
	CanProcess() bool
	Record()
	Remaining() int
}
