// Package contracts defines the core types and interfaces shared across devflow.
package contracts

// Context is the mutable key-value store shared by reference with every task
// runner during a single pipeline run. It is schema-less on purpose: tasks
// extend it dynamically, and later tasks in the same run observe earlier
// mutations immediately.
type Context map[string]any

// Status is a generic component status report. Every component includes at
// least the "enabled" and "initialized" keys.
type Status map[string]any
