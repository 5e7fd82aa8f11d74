// Package common contains shared constants and sentinel errors used across
// Safe360 components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// ForwardedForHeaderName is consulted before the peer address when the
// caller origin is resolved for rate limiting and activity entries.
const ForwardedForHeaderName = "x-forwarded-for"

// ServiceName is the fully qualified gRPC service served by the vault
// server.
const ServiceName = "safe360.v1.VaultService"

// RPC method names of ServiceName.
const (
	MethodPing                 = "Ping"
	MethodRegister             = "Register"
	MethodLogin                = "Login"
	MethodRequestPasswordReset = "RequestPasswordReset"
	MethodValidateResetToken   = "ValidateResetToken"
	MethodConsumePasswordReset = "ConsumePasswordReset"
	MethodLookupInvite         = "LookupInvite"
	MethodActivateInvite       = "ActivateInvite"

	MethodMe             = "Me"
	MethodChangePassword = "ChangePassword"
	MethodSetPIN         = "SetPIN"
	MethodSetPlan        = "SetPlan"
	MethodListGuests     = "ListGuests"
	MethodCreateInvite   = "CreateInvite"
	MethodCreateVault    = "CreateVault"
	MethodListVaults     = "ListVaults"
	MethodGetVault       = "GetVault"
	MethodRenameVault    = "RenameVault"
	MethodApproveVault   = "ApproveVault"
	MethodRejectVault    = "RejectVault"
	MethodDeleteVault    = "DeleteVault"
	MethodAddItem        = "AddItem"
	MethodUpdateItem     = "UpdateItem"
	MethodDeleteItem     = "DeleteItem"
	MethodUsage          = "Usage"
	MethodQueryActivity  = "QueryActivity"
)

// FullMethod returns the gRPC path of method, e.g. /safe360.v1.VaultService/Ping.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
