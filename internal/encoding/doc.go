// Package encoding turns a settings record into an encoder invocation and
// runs it.
//
// Build resolves one input file into a Plan: encoder id, preset tier, thread
// count, optional bitrate/scale/segment flags, and the output path inside the
// converted-output folder next to the input. Plan.Args renders the argument
// list in a fixed order. Exec runs the encoder as a blocking child process
// with its console window hidden, killing it when the context is canceled,
// and reports nonzero exits as ExitError with the tail of stderr attached.
package encoding
