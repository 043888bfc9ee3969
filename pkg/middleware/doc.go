// Package middleware contains the HTTP request pipeline: bearer token
// authentication, route authorization with ownership checks, and login
// rate limiting.
package middleware
