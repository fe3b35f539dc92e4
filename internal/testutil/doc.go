// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test fakes and helpers for tests that change
// process-wide state such as the working directory or the user's config
// directory. Tests using the process-state helpers must not call t.Parallel.
package testutil
