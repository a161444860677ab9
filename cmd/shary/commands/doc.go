// Package commands defines the shary CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - register        Create the local account and publish the public key
//   - login           Verify credentials against the local vault
//   - ping            Probe relay liveness
//   - send            Share field values with recipients
//   - request         Ask recipients to share fields back
//   - whoami          Print account info and key fingerprint
//   - delete-account  Remove local credentials and the relay registration
//
// # Implementation
//
// The root command loads configuration (env, then flags) and builds the
// dependency graph before any subcommand runs, so handlers share one app
// context.
package commands
