// Package ingest validates a selected avatar image and encodes it, off the
// caller's goroutine, into a data URI that can be used directly as an image
// source.
//
// The flow is PreCheck -> Start -> Continuation. PreCheck evaluates the type
// and size rules independently and gates encoding on both. Start launches a
// one-shot Task whose Result is handed to the continuation; callers never wait
// for it. Nothing here cancels an in-flight encode: when several selections
// overlap, whichever Result the owner receives last is the one it keeps.
package ingest
