//go:build rp2040 || rp2350

package main

import (
	"bytes"
	"html"
	"strconv"

	"github.com/soypat/lneto/http/httpraw"
	"github.com/soypat/lneto/tcp"
)

var ssidMarker = []byte("{{SSID}}")

// handleHTTP processes an HTTP request and writes the response.
func handleHTTP(conn *tcp.Conn, reqHdr *httpraw.Header, buf []byte) {
	uri := string(reqHdr.RequestURI())

	var respHdr httpraw.Header
	respHdr.SetProtocol("HTTP/1.1")
	respHdr.Set("Connection", "close")

	switch uri {
	case "/":
		ssid := html.EscapeString(joinedSSID)
		before, after, _ := bytes.Cut(webPage, ssidMarker)
		respHdr.SetStatus("200", "OK")
		respHdr.Set("Content-Type", "text/html")
		respHdr.Set("Content-Length", strconv.Itoa(len(before)+len(ssid)+len(after)))
		resp, _ := respHdr.AppendResponse(buf[:0])
		conn.Write(resp)
		conn.Write(before)
		conn.Write([]byte(ssid))
		conn.Write(after)

	case "/ssid":
		respHdr.SetStatus("200", "OK")
		respHdr.Set("Content-Type", "text/plain")
		respHdr.Set("Content-Length", strconv.Itoa(len(joinedSSID)))
		resp, _ := respHdr.AppendResponse(buf[:0])
		conn.Write(resp)
		conn.Write([]byte(joinedSSID))

	case "/toggle-led":
		respHdr.SetStatus("200", "OK")
		resp, _ := respHdr.AppendResponse(buf[:0])
		conn.Write(resp)
		lastLedState = !lastLedState
		dev.GPIOSet(0, lastLedState)

	default:
		println("Path not found:", uri)
		respHdr.SetStatus("404", "Not Found")
		resp, _ := respHdr.AppendResponse(buf[:0])
		conn.Write(resp)
	}
}
