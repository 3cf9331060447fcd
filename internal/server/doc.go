// Package server implements the HTTP surface using the Echo framework.
//
// Routes mirror the polling protocol the clients speak: login, check-requests,
// approve, decline, check-decline, logout, validate, plus debug (_status,
// _users) and observability (health, metrics) endpoints. Handler errors are
// converted at the boundary into structured JSON failure responses.
package server
