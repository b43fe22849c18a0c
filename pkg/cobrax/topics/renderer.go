package topics

// Renderer turns a topic's raw content into terminal output.
// format is the topic file extension without the dot.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer prints topics verbatim; used when output is not a terminal
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
