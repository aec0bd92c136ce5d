// Package api handles incoming HTTP requests, request decoding, and response
// formatting. Handlers translate HTTP concerns into TaskService and auth
// Gateway calls; errors are mapped to status codes in one place
// (MapErrorToStatusCode) so no handler decides a status on its own.
package api
