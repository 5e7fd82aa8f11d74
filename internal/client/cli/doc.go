// Package cli implements vaultadm, the operator command line for a safe360
// vault server.
//
// Commands that talk to a running server use the session token saved by
// "vaultadm login". "vaultadm bootstrap" is the exception: it opens the
// server's store directly to create the master identity before the first
// start.
//
//	vaultadm bootstrap --store data/safe360.json --email root@example.com
//	vaultadm login --email root@example.com
//	vaultadm set-plan <identity-id> Pro --expires 720h
//	vaultadm activity --subject <identity-id> --limit 20
package cli
