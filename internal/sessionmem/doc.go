// Package sessionmem provides short-lived key-value memory scoped to one
// visitor session, used to remember the display name a visitor chose.
package sessionmem
