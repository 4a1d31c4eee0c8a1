// Package pipeline runs the streaming diff: records are read from an input
// stream, compared against a specification snapshot by a bounded pool of
// workers, and every finding is written to an output stream as an envelope.
//
// The run has two halves joined by a bounded result channel:
//
//	reader -> dispatcher -> [N workers] -> results (32) -> sink -> writer
//
// The dispatcher half owns the reader, the worker pool and the closing of the
// result channel. The sink half is the only writer of output. Run succeeds
// only when both halves finish cleanly; the first fatal fault fails the run.
//
// Malformed input records are logged and skipped. A comparison error, a
// comparison panic, an input read error, or an output write error is fatal.
package pipeline
