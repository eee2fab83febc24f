// Package server composes and runs the account service process boundary.
//
// It wires the SQLite store, token codec, mail collaborator, and HTTP API
// into one server so identity decisions are made from a single source of
// truth.
package server
