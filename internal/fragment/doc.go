// Package fragment defines the core content model shared by the publish
// pipeline, the feed synchronizer, and the storage client: the Fragment
// itself, its visibility track, and the closed genre enumeration with the
// coercion rules that keep classifier output inside it.
package fragment
