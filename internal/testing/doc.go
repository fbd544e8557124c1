// Package testing provides test utilities, builders, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating node configurations
//   - NodeFixture: A temporary node root with a file store that records ownership
//   - MockRunner: testify mock of the egosh/system command runner
//
// Usage:
//
//	node := testing.NewNodeFixture(t)
//	cfg := testing.NewConfigBuilder(node.Root).
//	    WithHostname("m1.example.com").
//	    WithMaster(true).
//	    Build()
package testing
