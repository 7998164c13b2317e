// Package cli holds the process-level pieces shared by the commands: exit
// codes carried on errors and logger construction from flag values.
package cli
