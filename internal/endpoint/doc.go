// SPDX-License-Identifier: MPL-2.0

// Package endpoint resolves named external feed endpoints into push
// credentials. Secrets may live in the configuration or in the OS keyring.
package endpoint
