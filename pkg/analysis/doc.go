// Package analysis keeps the latest evaluation of every MultiPV line of the running search.
//
// A Store is organized in epochs. Begin opens one (one per "go"), SearchInfo messages
// overwrite the slot named by their MultiPV index, and BestMove closes it. Updates that
// belong to no open epoch, such as the tail of a search that was stopped, are dropped.
package analysis
