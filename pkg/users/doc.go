// Package users implements the auth.IdentityStore contract over PostgreSQL
// and in memory, plus the user management service.
package users
