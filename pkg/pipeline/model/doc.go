// Package model holds the data structures shared by the pipeline package
// and its options: the step descriptor, the generic step itself, and the
// hooks a pipeline option can implement.
package model
