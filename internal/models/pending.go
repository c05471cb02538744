package models

// Quiz is a fully generated question, ready to render: the correct colleague,
// the four options in presentation order, and (for hard mode) the composed
// grid image. This is also the payload held by the precomputation cache.
type Quiz struct {
	Correct Colleague
	// Options are shuffled; the grid image numbering follows this order.
	Options []Colleague
	Mode    string
	// GridImage is JPEG bytes for hard mode, empty for easy mode or when
	// composition failed entirely.
	GridImage []byte
}
