// Package developers maintains the staffing directory of engineers:
// storage over PostgreSQL or memory, a paginated listing, and a service
// that audits every mutation.
package developers
