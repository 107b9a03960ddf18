// Package mock provides test doubles for the ai interfaces. The doubles
// default to deterministic behavior and allow per-test overrides through
// function fields.
package mock
