// Package auth provides credential and token-based authentication for the
// tracker API: account types and the IdentityStore contract, bcrypt password
// hashing, HS256 token issuance and validation, and subject-to-principal
// resolution with role capabilities.
package auth
