// Package sso implements federated login over OpenID Connect and the
// bridge that maps a verified external identity onto a local account.
package sso
