package grpc

import (
	"encoding/json"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// decode fills dst, a struct with json tags, from req.
func decode(req *structpb.Struct, dst any) error {
	b, err := json.Marshal(req.AsMap())
	if err != nil {
		return common.Invalid("request", "is malformed")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return common.Invalid("request", "is malformed")
	}
	return nil
}

// encode converts v, anything json can marshal into an object, to a Struct.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}

// identityView is the public shape of an identity. Secrets and token
// material never leave the server.
type identityView struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Name          string      `json:"name,omitempty"`
	Role          models.Role `json:"role"`
	Plan          models.Plan `json:"plan,omitempty"`
	PlanExpiresAt *time.Time  `json:"planExpiresAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	InvitedBy     string      `json:"invitedBy,omitempty"`
	Activated     bool        `json:"activated"`
	HasPIN        bool        `json:"hasPin"`
	EffectivePlan models.Plan `json:"effectivePlan,omitempty"`
}

func viewOf(i *models.Identity) identityView {
	return identityView{
		ID:            i.ID,
		Email:         i.Email,
		Name:          i.Name,
		Role:          i.Role,
		Plan:          i.Plan,
		PlanExpiresAt: i.PlanExpiresAt,
		CreatedAt:     i.CreatedAt,
		InvitedBy:     i.InvitedBy,
		Activated:     i.CanLogin(),
		HasPIN:        i.PINHash != "",
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type consumeResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type activateInviteRequest struct {
	Token string `json:"token"`
	PIN   string `json:"pin"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type setPlanRequest struct {
	IdentityID string `json:"identityId"`
	Plan       string `json:"plan"`
	ExpiresAt  string `json:"expiresAt"`
}

type createInviteRequest struct {
	GuestEmail string `json:"guestEmail"`
}

type vaultRequest struct {
	VaultID string `json:"vaultId"`
	Name    string `json:"name"`
	PIN     string `json:"pin"`
}

type itemRequest struct {
	VaultID     string `json:"vaultId"`
	ItemID      string `json:"itemId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type activityRequest struct {
	SubjectID string `json:"subjectId"`
	Limit     int    `json:"limit"`
}
