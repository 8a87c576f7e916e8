// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler.
//
// A request whose path exists but whose method is not routed gets the same
// 404 Not Found as an unknown path instead of chi's 405, so unsupported
// methods do not reveal which routes exist. chi copies this handler into
// mounted subrouters, so it must answer directly and never dispatch the
// request through a router again.
func CheckHTTPMethod(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
