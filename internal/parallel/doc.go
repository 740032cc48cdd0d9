// Package parallel runs render jobs on a fixed set of worker goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so a few slow chunks do not leave workers idle.
package parallel
