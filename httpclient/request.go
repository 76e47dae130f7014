package httpclient

// Request is one outbound call.
type Request struct {
	// Method defaults to GET.
	Method string
	// URL is absolute; the registry addresses a different leader per run.
	URL string
	// Headers override the client's default headers.
	Headers map[string]string
}

// Response holds a fully read response.
type Response struct {
	StatusCode int
	Body       []byte
}
