// Package api assembles the HTTP server: routes, handlers and the
// middleware chain that authenticates, authorizes and audits requests.
package api
