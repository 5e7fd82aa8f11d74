package grpc

import (
	"context"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustPrincipal(ctx context.Context) (guard.Principal, error) {
	p, ok := principalFrom(ctx)
	if !ok {
		return guard.Principal{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return p, nil
}

func (s *Server) ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]string{"status": "OK"})
}

func (s *Server) register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in registerRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registration request", "email", in.Email)

	identity, err := s.users.Register(ctx, in.Email, in.Password, in.Name, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"identity": viewOf(identity)})
}

func (s *Server) login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in loginRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	session, err := s.tokens.Login(ctx, in.Email, in.Password, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{
		"accessToken": session.Token,
		"expiresAt":   session.ExpiresAt,
		"identity":    viewOf(&session.Identity),
	})
}

func (s *Server) requestPasswordReset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in emailRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.tokens.RequestReset(ctx, in.Email, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) validateResetToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in tokenRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	email, err := s.tokens.ValidateResetToken(ctx, in.Token)
	if err != nil {
		return nil, err
	}
	return encode(map[string]string{"email": email})
}

func (s *Server) consumePasswordReset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in consumeResetRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.tokens.ConsumeReset(ctx, in.Token, in.NewPassword, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) lookupInvite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in tokenRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	info, err := s.tokens.LookupInvite(ctx, in.Token)
	if err != nil {
		return nil, err
	}
	return encode(map[string]string{
		"guestEmail":       info.GuestEmail,
		"adminDisplayName": info.AdminDisplayName,
	})
}

func (s *Server) activateInvite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in activateInviteRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.tokens.ActivateInvite(ctx, in.Token, in.PIN, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) me(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.users.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	plan, err := s.users.EffectivePlanOf(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view := viewOf(identity)
	view.EffectivePlan = plan
	return encode(map[string]any{"identity": view})
}

func (s *Server) changePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in changePasswordRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.users.ChangePassword(ctx, p, in.OldPassword, in.NewPassword, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) setPIN(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.users.SetPIN(ctx, p, in.PIN, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) setPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in setPlanRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	plan, err := models.ParsePlan(in.Plan)
	if err != nil {
		return nil, common.Invalid("plan", "must be Free, Pro or Scale")
	}
	var expiresAt *time.Time
	if in.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, in.ExpiresAt)
		if err != nil {
			return nil, common.Invalid("expiresAt", "must be an RFC 3339 timestamp")
		}
		expiresAt = &t
	}
	if err := s.users.SetPlan(ctx, p, in.IdentityID, plan, expiresAt); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) listGuests(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	guests, err := s.users.ListGuests(ctx, p)
	if err != nil {
		return nil, err
	}
	views := make([]identityView, 0, len(guests))
	for i := range guests {
		views = append(views, viewOf(&guests[i]))
	}
	return encode(map[string]any{"guests": views})
}

func (s *Server) createInvite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in createInviteRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	invite, err := s.tokens.CreateInvite(ctx, p, in.GuestEmail, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]string{
		"guestId":    invite.GuestID,
		"guestEmail": invite.GuestEmail,
		"link":       invite.Link,
	})
}

func (s *Server) createVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	v, err := s.vaults.CreateVault(ctx, p, in.Name, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"vault": v})
}

func (s *Server) listVaults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.vaults.ListVaults(ctx, p)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"vaults": list})
}

func (s *Server) getVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	v, err := s.vaults.GetVault(ctx, p, in.VaultID)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"vault": v})
}

func (s *Server) renameVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	v, err := s.vaults.RenameVault(ctx, p, in.VaultID, in.Name, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"vault": v})
}

func (s *Server) approveVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	v, err := s.vaults.ApproveVault(ctx, p, in.VaultID, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"vault": v})
}

func (s *Server) rejectVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.vaults.RejectVault(ctx, p, in.VaultID, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) deleteVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in vaultRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.vaults.DeleteVault(ctx, p, in.VaultID, in.PIN, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) addItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in itemRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	item, err := s.vaults.AddItem(ctx, p, in.VaultID, in.Title, in.Description, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"item": item})
}

func (s *Server) updateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in itemRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	item, err := s.vaults.UpdateItem(ctx, p, in.VaultID, in.ItemID, in.Title, in.Description, originFrom(ctx))
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"item": item})
}

func (s *Server) deleteItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in itemRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := s.vaults.DeleteItem(ctx, p, in.VaultID, in.ItemID, originFrom(ctx)); err != nil {
		return nil, err
	}
	return empty(), nil
}

func (s *Server) usage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.vaults.Usage(ctx, p)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"usage": report})
}

func (s *Server) queryActivity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := mustPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	var in activityRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	entries, err := s.activity.QueryFor(ctx, p, in.SubjectID, in.Limit)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"entries": entries})
}
