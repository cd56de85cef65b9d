package port

// TextExtractor converts raw PDF bytes into a linear text stream.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}
