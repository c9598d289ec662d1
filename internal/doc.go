// Package internal contains private implementation details for nifty.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - s3api: interfaces over the AWS SDK for mocking
//   - validation: input validation logic
//   - pool: memory management optimizations
//   - testutil: shared test doubles
package internal
