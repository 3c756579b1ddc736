// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"net/http"
)

// A Result wraps the decoded payload of a completed request. One
// Result is produced per successfully completed Request. Callers must
// treat it as immutable.
type Result struct {
	// Value is the decoded response payload: the Decoder's output if
	// one was configured, the parsed JSON body if the response was
	// JSON, or the raw body as a []byte otherwise.
	Value any
	// StatusCode is the HTTP status code of the final response.
	StatusCode int
	// Header contains the response header fields of the final
	// response.
	Header http.Header
}
