package responder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"httpclient-stack/lib/buffer"
	"httpclient-stack/message"
	"httpclient-stack/sd"
)

var bodyChannels = buffer.Channels{In: 0, Out: 1}

func bodyOf(s string) *buffer.Array {
	a := buffer.NewArray()
	a.Append(bodyChannels.Out, []byte(s))
	return a
}

// headersRecorder implements HeadersHandler.
type headersRecorder struct {
	calls   int
	status  int
	reason  string
	headers message.Headers
}

func (h *headersRecorder) HeadersCompleted(status int, reason string, headers message.Headers) {
	h.calls++
	h.status = status
	h.reason = reason
	h.headers = headers
}

// rawRecorder implements RawHandler.
type rawRecorder struct {
	calls  int
	status int
	reason string
	body   string
}

func (h *rawRecorder) CompletedRaw(status int, reason string, channels buffer.Channels, body *buffer.Array) {
	h.calls++
	h.status = status
	h.reason = reason
	if body != nil {
		h.body = string(body.Bytes(channels.Out))
	}
}

// completedRecorder implements CompletedHandler.
type completedRecorder struct {
	calls   int
	status  int
	content sd.Document
}

func (h *completedRecorder) Completed(status int, reason string, content sd.Document) {
	h.calls++
	h.status = status
	h.content = content
}

// resultRecorder implements ResultHandler, ContentErrorHandler and
// ErrorHandler, recording which path ran.
type resultRecorder struct {
	results []sd.Document

	errStatus  int
	errReason  string
	errContent sd.Document
	errCalls   int
}

func (h *resultRecorder) Result(content sd.Document) { h.results = append(h.results, content) }

func (h *resultRecorder) ErrorWithContent(status int, reason string, content sd.Document) {
	h.errCalls++
	h.errStatus = status
	h.errReason = reason
	h.errContent = content
}

// plainErrorRecorder implements ResultHandler and ErrorHandler only.
type plainErrorRecorder struct {
	results  []sd.Document
	errCalls int
	status   int
}

func (h *plainErrorRecorder) Result(content sd.Document) { h.results = append(h.results, content) }

func (h *plainErrorRecorder) Error(status int, reason string) {
	h.errCalls++
	h.status = status
}

type ResponderTestSuite struct {
	suite.Suite
}

func TestResponderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponderTestSuite))
}

func (s *ResponderTestSuite) TestLifecycleFlags() {
	r := WithRawBody(&rawRecorder{}, Options{})

	s.False(r.Finished())
	s.False(r.NeedsHeaders())
	s.False(r.FollowRedirects())
	s.False(r.RedirectStatusOK())

	r.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf("x"))

	s.True(r.Finished())
	s.Equal(TransportOK, r.ResultCode())
}

func (s *ResponderTestSuite) TestURLForDiagnostics() {
	r := Discard(Options{})
	r.SetURL("http://example.invalid/resource")
	s.Equal("http://example.invalid/resource", r.URL())
	s.Equal("Discard", r.Name())
}

func (s *ResponderTestSuite) TestTimeoutDefaults() {
	r := Discard(Options{})
	s.Equal(DefaultTimeoutPolicy, r.Timeout())

	custom := TimeoutPolicy{Connect: 1, Transfer: 2}
	r = Discard(Options{Timeout: custom})
	s.Equal(custom, r.Timeout())
}

// Headers of a superseded redirect hop are dropped when the next hop's
// status line arrives, except for the cookies, which accumulate across
// the whole chain.
func (s *ResponderTestSuite) TestRedirectKeepsCookiesOnly() {
	recorder := &headersRecorder{}
	r := HeadersOnly(recorder, Options{})

	// Hop 1: 301 with a cookie and a stale header.
	r.StatusLineReceived()
	r.HeaderReceived("Set-Cookie", "auth=tok1")
	r.HeaderReceived("Content-Type", "text/html")
	r.HeaderReceived("Location", "/hop2")

	// Hop 2: 301 with another cookie.
	r.StatusLineReceived()
	r.HeaderReceived("Set-Cookie", "session=xyz")
	r.HeaderReceived("Location", "/final")

	// Final hop: 200.
	r.StatusLineReceived()
	r.HeaderReceived("Content-Type", "text/plain")

	r.HeadersReceived(200, "OK", &TransferInfo{})
	r.Finish(TransportOK, 200, "OK", bodyChannels, nil)

	s.Require().Equal(1, recorder.calls)
	s.Equal(200, recorder.status)

	cookies, ok := recorder.headers.Values("Set-Cookie")
	s.Require().True(ok)
	s.Equal([]string{"auth=tok1", "session=xyz"}, cookies)

	ct, ok := recorder.headers.Get("Content-Type")
	s.Require().True(ok)
	s.Equal("text/plain", ct)

	_, ok = recorder.headers.Get("Location")
	s.False(ok, "stale header from a superseded hop leaked")
}

func (s *ResponderTestSuite) TestHeadersOnlyCapabilities() {
	r := HeadersOnly(&headersRecorder{}, Options{})
	s.True(r.NeedsHeaders())
	s.True(r.FollowRedirects())
	s.True(r.RedirectStatusOK())
}

// A headers-only responder given a body must never decode it.
func (s *ResponderTestSuite) TestHeadersOnlyIgnoresBody() {
	recorder := &headersRecorder{}
	r := HeadersOnly(recorder, Options{})

	r.StatusLineReceived()
	r.HeaderReceived("Content-Length", "5")
	r.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf("hello"))

	s.Require().Equal(1, recorder.calls)
	s.Equal(200, recorder.status)
	s.Equal("OK", recorder.reason)

	length, ok := recorder.headers.Get("Content-Length")
	s.Require().True(ok)
	s.Equal("5", length)
}

func (s *ResponderTestSuite) TestRawBodyDelivery() {
	recorder := &rawRecorder{}
	r := WithRawBody(recorder, Options{})

	r.StatusLineReceived()
	r.HeaderReceived("Content-Type", "text/plain")
	r.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf("hello"))

	s.Require().Equal(1, recorder.calls)
	s.Equal(200, recorder.status)
	s.Equal("OK", recorder.reason)
	s.Equal("hello", recorder.body)
	s.True(r.Finished())
}

// Success bodies are decoded; everything else is carried verbatim.
func (s *ResponderTestSuite) TestCompletedDecodeOrPassthrough() {
	body := `{"a":1}`

	success := &completedRecorder{}
	r := WithCompleted(success, Options{})
	r.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf(body))

	s.Require().Equal(1, success.calls)
	s.True(success.content.IsMap())
	s.Equal(1, success.content.Get("a").AsInt())

	failure := &completedRecorder{}
	r = WithCompleted(failure, Options{})
	r.Finish(TransportOK, 500, "Internal Server Error", bodyChannels, bodyOf(body))

	s.Require().Equal(1, failure.calls)
	s.False(failure.content.IsMap(), "non-success body must not be parsed")
	s.Equal(body, failure.content.AsString())
}

func (s *ResponderTestSuite) TestResultSuccessRouting() {
	testcases := []struct {
		desc    string
		status  int
		success bool
	}{
		{desc: "200", status: 200, success: true},
		{desc: "204", status: 204, success: true},
		{desc: "299", status: 299, success: true},
		{desc: "un-followed 302", status: 302, success: false},
		{desc: "404", status: 404, success: false},
		{desc: "500", status: 500, success: false},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			recorder := &resultRecorder{}
			r := WithResult(recorder, Options{})
			r.Finish(TransportOK, tc.status, "", bodyChannels, bodyOf(`{"a":1}`))

			if tc.success {
				s.Require().Len(recorder.results, 1)
				s.Equal(0, recorder.errCalls)
				s.Equal(1, recorder.results[0].Get("a").AsInt())
			} else {
				s.Empty(recorder.results)
				s.Require().Equal(1, recorder.errCalls)
				s.Equal(tc.status, recorder.errStatus)
				// The error path never sees a parsed document.
				s.Equal(`{"a":1}`, recorder.errContent.AsString())
			}
		})
	}
}

func (s *ResponderTestSuite) TestResultTransportFailure() {
	recorder := &resultRecorder{}
	r := WithResult(recorder, Options{})

	r.Finish(TransportTimedOut, 0, "", bodyChannels, nil)

	s.Empty(recorder.results)
	s.Require().Equal(1, recorder.errCalls)
	s.Equal(TransportTimedOut, r.ResultCode())
}

func (s *ResponderTestSuite) TestResultErrorFallsBackToError() {
	recorder := &plainErrorRecorder{}
	r := WithResult(recorder, Options{})

	r.Finish(TransportOK, 404, "Not Found", bodyChannels, bodyOf("missing"))

	s.Empty(recorder.results)
	s.Require().Equal(1, recorder.errCalls)
	s.Equal(404, recorder.status)
}

// A 2xx body that fails to parse surfaces as the undefined document via
// the success hook, exactly like an empty or absent success body.
func (s *ResponderTestSuite) TestResultDecodeFailureIsNotAnError() {
	testcases := []struct {
		desc string
		body *buffer.Array
	}{
		{desc: "malformed", body: bodyOf(`{"a":`)},
		{desc: "empty", body: bodyOf("")},
		{desc: "absent", body: nil},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			recorder := &resultRecorder{}
			r := WithResult(recorder, Options{})
			r.Finish(TransportOK, 200, "OK", bodyChannels, tc.body)

			s.Require().Len(recorder.results, 1)
			s.Equal(0, recorder.errCalls)
			s.True(recorder.results[0].IsUndefined())
		})
	}
}

func (s *ResponderTestSuite) TestDiscard() {
	r := Discard(Options{})
	r.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf(`{"ignored":true}`))
	s.True(r.Finished())

	// Failures are absorbed too.
	r = Discard(Options{})
	r.Finish(TransportOK, 500, "Internal Server Error", bodyChannels, nil)
	s.True(r.Finished())
}

func (s *ResponderTestSuite) TestCookieAccessor() {
	recorder := &headersRecorder{}
	r := HeadersOnly(recorder, Options{}).(*headersOnly)

	r.StatusLineReceived()
	r.HeaderReceived("Set-Cookie", "auth=tok1; Path=/")
	r.Finish(TransportOK, 200, "OK", bodyChannels, nil)

	s.Equal("auth=tok1", r.Cookie("auth"))
	s.Equal("", r.Cookie("other"))
}

func TestForeignHookRejection(t *testing.T) {
	type headersAndRaw struct {
		headersRecorder
		rawRecorder
	}
	type resultAndCompleted struct {
		resultRecorder
		completedRecorder
	}

	assert.Panics(t, func() { HeadersOnly(&headersAndRaw{}, Options{}) })
	assert.Panics(t, func() { WithRawBody(&headersAndRaw{}, Options{}) })
	assert.Panics(t, func() { WithResult(&resultAndCompleted{}, Options{}) })
	assert.Panics(t, func() { NewPolled(&resultAndCompleted{}, Options{}) })

	assert.NotPanics(t, func() { HeadersOnly(&headersRecorder{}, Options{}) })
	assert.NotPanics(t, func() { WithResult(&resultRecorder{}, Options{}) })
}

// The polled responder's accessors must be stable from another goroutine
// as soon as it observes the finished flag.
func TestPolledCrossGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	recorder := &resultRecorder{}
	polled := NewPolled(recorder, Options{})

	assert.Equal(t, 500, polled.HTTPStatus())

	done := make(chan struct{})
	go func() {
		defer close(done)
		polled.StatusLineReceived()
		polled.HeaderReceived("Content-Type", "application/json")
		polled.Finish(TransportOK, 200, "OK", bodyChannels, bodyOf(`{"ok":true}`))
	}()

	for !polled.Finished() {
		// Spin like a legacy poll site would.
	}

	assert.Equal(t, 200, polled.HTTPStatus())
	assert.Equal(t, "OK", polled.Reason())
	assert.Equal(t, TransportOK, polled.ResultCode())
	<-done

	assert.Len(t, recorder.results, 1)
	assert.True(t, recorder.results[0].Get("ok").AsBool())
}

func TestPolledNilHandler(t *testing.T) {
	polled := NewPolled(nil, Options{})
	polled.Finish(TransportOK, 503, "Service Unavailable", bodyChannels, bodyOf("error"))

	assert.True(t, polled.Finished())
	assert.Equal(t, 503, polled.HTTPStatus())
	assert.Equal(t, "Service Unavailable", polled.Reason())
}

func TestPolledErrorSnapshot(t *testing.T) {
	recorder := &resultRecorder{}
	polled := NewPolled(recorder, Options{})

	polled.Finish(TransportOK, 404, "Not Found", bodyChannels, bodyOf("gone"))

	assert.Equal(t, 404, polled.HTTPStatus())
	assert.Equal(t, "Not Found", polled.Reason())
	assert.Equal(t, 1, recorder.errCalls)
	assert.Equal(t, "gone", recorder.errContent.AsString())
}
