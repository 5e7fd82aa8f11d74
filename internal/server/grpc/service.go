package grpc

import (
	"context"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// unaryMethod is the shape of every RPC: a Struct in, a Struct out.
type unaryMethod func(s *Server, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// vaultServiceServer is the handler type checked by grpc.RegisterService.
type vaultServiceServer interface {
	serviceName() string
}

func (s *Server) serviceName() string { return common.ServiceName }

func methodTable() map[string]unaryMethod {
	return map[string]unaryMethod{
		common.MethodPing:                 (*Server).ping,
		common.MethodRegister:             (*Server).register,
		common.MethodLogin:                (*Server).login,
		common.MethodRequestPasswordReset: (*Server).requestPasswordReset,
		common.MethodValidateResetToken:   (*Server).validateResetToken,
		common.MethodConsumePasswordReset: (*Server).consumePasswordReset,
		common.MethodLookupInvite:         (*Server).lookupInvite,
		common.MethodActivateInvite:       (*Server).activateInvite,

		common.MethodMe:             (*Server).me,
		common.MethodChangePassword: (*Server).changePassword,
		common.MethodSetPIN:         (*Server).setPIN,
		common.MethodSetPlan:        (*Server).setPlan,
		common.MethodListGuests:     (*Server).listGuests,
		common.MethodCreateInvite:   (*Server).createInvite,
		common.MethodCreateVault:    (*Server).createVault,
		common.MethodListVaults:     (*Server).listVaults,
		common.MethodGetVault:       (*Server).getVault,
		common.MethodRenameVault:    (*Server).renameVault,
		common.MethodApproveVault:   (*Server).approveVault,
		common.MethodRejectVault:    (*Server).rejectVault,
		common.MethodDeleteVault:    (*Server).deleteVault,
		common.MethodAddItem:        (*Server).addItem,
		common.MethodUpdateItem:     (*Server).updateItem,
		common.MethodDeleteItem:     (*Server).deleteItem,
		common.MethodUsage:          (*Server).usage,
		common.MethodQueryActivity:  (*Server).queryActivity,
	}
}

// isPublic reports whether fullMethod may be called without a session.
func isPublic(fullMethod string) bool {
	switch fullMethod {
	case common.FullMethod(common.MethodPing),
		common.FullMethod(common.MethodRegister),
		common.FullMethod(common.MethodLogin),
		common.FullMethod(common.MethodRequestPasswordReset),
		common.FullMethod(common.MethodValidateResetToken),
		common.FullMethod(common.MethodConsumePasswordReset),
		common.FullMethod(common.MethodLookupInvite),
		common.FullMethod(common.MethodActivateInvite):
		return true
	}
	return false
}

func serviceDesc() grpc.ServiceDesc {
	table := methodTable()
	desc := grpc.ServiceDesc{
		ServiceName: common.ServiceName,
		HandlerType: (*vaultServiceServer)(nil),
		Metadata:    "safe360/v1/vault.proto",
	}
	for name, fn := range table {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: name,
			Handler:    unaryHandler(common.FullMethod(name), fn),
		})
	}
	return desc
}

func unaryHandler(fullMethod string, fn unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(*Server)
		call := func(ctx context.Context, req any) (any, error) {
			resp, err := fn(s, ctx, req.(*structpb.Struct))
			if err != nil {
				return nil, s.statusError(ctx, fullMethod, err)
			}
			return resp, nil
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, call)
	}
}
