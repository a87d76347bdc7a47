// Package services holds shared plumbing for the backend integrations:
// context helpers that stamp correlation identifiers and operation names
// onto requests so log lines from different clients can be tied back to a
// single publish.
package services
