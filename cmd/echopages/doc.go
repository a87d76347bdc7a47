// Command echopages publishes and browses poetry fragments: moderated,
// classified submissions against the shared backend, with curated and
// community collections, authentication, and a realtime watch mode.
package main
