// Package httputil defines the API's JSON request and response shapes.
package httputil
