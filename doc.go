// Package accountd implements the account lifecycle and credential
// issuance core of an authentication backend: signup with email
// confirmation, password verification, and stateless session token
// issuance and termination.
//
// The core (command handlers, repositories, token service) is transport
// agnostic; http_controller.go maps the operations onto a fiber JSON API.
package accountd
