// Package projects manages tracked projects: storage over PostgreSQL or
// memory, and a service that audits every mutation.
package projects
