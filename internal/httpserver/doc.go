// Package httpserver runs the optional HTTP status endpoint.
package httpserver
