// Package client is the gRPC client of the vault server used by the admin
// CLI.
//
// Requests and responses travel as google.protobuf.Struct values; GRPCClient
// converts them to and from the types in internal/client/models. The session
// token obtained by Login, or set with SetAccessToken, is attached to every
// call by a unary interceptor.
//
// Status codes are mapped to the sentinel errors in this package so callers
// can match them with errors.Is.
package client
