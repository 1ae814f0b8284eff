// Package orchestrator wires the parse → build → render pipeline and the
// parse → generate path behind one dependency injection friendly type.
package orchestrator
