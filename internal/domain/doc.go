// Package domain defines the core business entities of the task tracker
// and the error taxonomy shared by every layer above it.
package domain
