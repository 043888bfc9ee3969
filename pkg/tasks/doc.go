// Package tasks manages tasks within projects, including the assignee
// ownership check used by the authorization layer.
package tasks
