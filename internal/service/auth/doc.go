// Package auth verifies identity credentials issued by an external identity
// provider. It never issues credentials and performs no authorization.
package auth
