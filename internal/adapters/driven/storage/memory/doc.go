// Package memory provides in-memory implementations of the driven store
// ports. They back service tests and hold no state across processes.
package memory
