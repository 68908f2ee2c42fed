package status

type Status struct {
	Code         int
	ReasonPhrase string
}

// Successful 2XX
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.3
var (
	OK             = add(Status{200, "OK"})
	Created        = add(Status{201, "Created"})
	Accepted       = add(Status{202, "Accepted"})
	NoContent      = add(Status{204, "No Content"})
	PartialContent = add(Status{206, "Partial Content"})
)

// Redirection 3xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.4
var (
	MovedPermanently  = add(Status{301, "Moved Permanently"})
	Found             = add(Status{302, "Found"})
	SeeOther          = add(Status{303, "See Other"})
	NotModified       = add(Status{304, "Not Modified"})
	TemporaryRedirect = add(Status{307, "Temporary Redirect"})
)

// Client Error 4xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.5
var (
	BadRequest       = add(Status{400, "Bad Request"})
	Unauthorized     = add(Status{401, "Unauthorized"})
	Forbidden        = add(Status{403, "Forbidden"})
	NotFound         = add(Status{404, "Not Found"})
	MethodNotAllowed = add(Status{405, "Method Not Allowed"})
	RequestTimeout   = add(Status{408, "Request Timeout"})
	Gone             = add(Status{410, "Gone"})
)

// Server Error 5xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.6
var (
	InternalServerError = add(Status{500, "Internal Server Error"})
	NotImplemented      = add(Status{501, "Not Implemented"})
	BadGateway          = add(Status{502, "Bad Gateway"})
	ServiceUnavailable  = add(Status{503, "Service Unavailable"})
	GatewayTimeout      = add(Status{504, "Gateway Timeout"})
)

var sm = make(map[int]*Status)

func add(status Status) Status {
	sm[status.Code] = &status
	return status
}

func FromCode(code int) (status Status, ok bool) {
	s, ok := sm[code]
	if !ok {
		return Status{Code: code, ReasonPhrase: ""}, false
	}

	return *s, true
}

// IsSuccess reports whether code is in the 2xx success class.
func IsSuccess(code int) bool { return 200 <= code && code <= 299 }

// IsRedirect reports whether code is in the 3xx redirection class.
func IsRedirect(code int) bool { return 300 <= code && code <= 399 }
