// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the process execution primitive used to drive push tools.
//
// A Runner executes one external command to completion and returns its exit
// code together with the captured stdout and stderr. A non-zero exit code is
// not an error at this layer: interpreting exit codes belongs to the caller.
// Only failures to start or wait on the process are returned as errors.
//
// ExecRunner is the os/exec implementation. It captures output into buffers
// and optionally streams it to caller-supplied writers at the same time, so
// the user sees tool output live while the caller still gets it for
// diagnostics.
package runtime
