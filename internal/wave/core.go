package wave

// Core carries a wave's method, headers, URI, body substance and — for
// reflected waves — a status code. Directed waves leave Status at zero;
// Reflected waves leave Method at its zero value (MethodExt, name "").
type Core struct {
	Method  Method
	Headers map[string][]string
	Uri     string
	Body    Substance
	Status  uint16
}

// NewDirectedCore builds a Core for a directed wave.
func NewDirectedCore(method Method, uri string, body Substance) Core {
	return Core{Method: method, Uri: uri, Body: body, Headers: map[string][]string{}}
}

// NewReflectedCore builds a Core for a reflected wave carrying a status and body.
func NewReflectedCore(status uint16, body Substance) Core {
	return Core{Status: status, Body: body, Headers: map[string][]string{}}
}

// IsSuccess reports whether Status is in [200,299]. HTTP-convention status
// codes: 2xx success, 4xx client fault, 5xx server fault (spec.md §4.2).
func (c Core) IsSuccess() bool {
	return c.Status >= 200 && c.Status <= 299
}

// Header returns the first value for a header key, or "" if absent.
func (c Core) Header(key string) string {
	if c.Headers == nil {
		return ""
	}
	vs := c.Headers[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// WithHeader returns a copy of c with key set to value (replacing any
// existing values for that key).
func (c Core) WithHeader(key, value string) Core {
	out := c.cloneHeaders()
	out.Headers[key] = []string{value}
	return out
}

// MergeHeaders returns a copy of c with other's headers merged in; keys
// present in both are won by `other`, per the PipeEx absorption rule in
// spec.md §4.6 ("headers are merged with later winning").
func (c Core) MergeHeaders(other map[string][]string) Core {
	out := c.cloneHeaders()
	for k, v := range other {
		out.Headers[k] = append([]string(nil), v...)
	}
	return out
}

func (c Core) cloneHeaders() Core {
	out := c
	out.Headers = make(map[string][]string, len(c.Headers))
	for k, v := range c.Headers {
		out.Headers[k] = append([]string(nil), v...)
	}
	return out
}

// Reason is a symbolic convenience derived from the numeric Status; it is
// never stored independently so it cannot drift from the code it describes
// (SPEC_FULL.md §3.1).
type Reason int

const (
	ReasonOk Reason = iota
	ReasonNotFound
	ReasonForbidden
	ReasonTimeout
	ReasonClientError
	ReasonServerError
)

func (r Reason) String() string {
	switch r {
	case ReasonOk:
		return "Ok"
	case ReasonNotFound:
		return "NotFound"
	case ReasonForbidden:
		return "Forbidden"
	case ReasonTimeout:
		return "Timeout"
	case ReasonClientError:
		return "ClientError"
	case ReasonServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// Reason derives the symbolic reason from c.Status.
func (c Core) Reason() Reason {
	switch {
	case c.Status >= 200 && c.Status <= 299:
		return ReasonOk
	case c.Status == 404:
		return ReasonNotFound
	case c.Status == 403:
		return ReasonForbidden
	case c.Status == 408 || c.Status == 504:
		return ReasonTimeout
	case c.Status >= 400 && c.Status <= 499:
		return ReasonClientError
	case c.Status >= 500:
		return ReasonServerError
	default:
		return ReasonOk
	}
}
