// Package http is the transport layer: router adapter, server lifecycle and
// return-style handlers that write the JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "prsentinel/internal/platform/net"
)

// Envelope is the response body every enveloped endpoint writes
type Envelope = pnet.Wire

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce. An error Body always wins
// over Status and is written enveloped, even when Raw is set
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
	Raw    bool
}

// Handle adapts a return-style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status, body := pnet.Failure(err, reqID)
		JSON(w, status, body)
		return
	}

	status := resp.Status
	switch {
	case status == 0:
		status = stdhttp.StatusOK
	case status == stdhttp.StatusNoContent:
		w.WriteHeader(status)
		return
	}
	if resp.Raw {
		JSON(w, status, resp.Body)
		return
	}
	JSON(w, status, pnet.Reply(status, resp.Body, reqID))
}

// OK is a 200 with data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent is an empty 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Bare writes v as the whole body, no envelope
func Bare(status int, v any) Response { return Response{Status: status, Body: v, Raw: true} }

// Error maps err to its status and error envelope
func Error(err error) Response { return Response{Body: err} }
