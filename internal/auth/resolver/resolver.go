package resolver

// AdministratorBit is Discord's permission flag for full
// administrative control.
const AdministratorBit uint64 = 0x8

// Reason explains which rule granted (or denied) administrative
// access. Callers use it for audit logging only; the allow/deny
// outcome is carried separately.
type Reason string

const (
	ReasonOwner     Reason = "OWNER"
	ReasonAdminBit  Reason = "ADMIN_BIT"
	ReasonExtraRole Reason = "EXTRA_ROLE"
	ReasonDenied    Reason = "DENIED"
)

// GuildContext carries everything needed for one administrative
// decision. It is assembled per check and never persisted.
type GuildContext struct {
	GuildID           int64
	Owner             bool
	Permissions       uint64  // requester's permission bitmask in the guild
	RequesterRoleIDs  []int64 // roles the requester holds in the guild
	ExtraAdminRoleIDs []int64 // guild-configured extra admin roles
}

// Decision is the outcome of one administrative check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// IsAdministrator decides whether the requester may administer the
// guild. It is a pure total function: rules are checked in a fixed
// precedence order and the first satisfied rule names the reason.
//
// Only the administrator bit is special-cased. Elevated bits such as
// "manage guild" do not grant access unless the requester holds a
// role listed in ExtraAdminRoleIDs.
func IsAdministrator(ctx GuildContext) Decision {
	if ctx.Owner {
		return Decision{Allowed: true, Reason: ReasonOwner}
	}

	if ctx.Permissions&AdministratorBit != 0 {
		return Decision{Allowed: true, Reason: ReasonAdminBit}
	}

	if len(ctx.ExtraAdminRoleIDs) > 0 {
		extra := make(map[int64]struct{}, len(ctx.ExtraAdminRoleIDs))
		for _, id := range ctx.ExtraAdminRoleIDs {
			extra[id] = struct{}{}
		}
		for _, id := range ctx.RequesterRoleIDs {
			if _, ok := extra[id]; ok {
				return Decision{Allowed: true, Reason: ReasonExtraRole}
			}
		}
	}

	return Decision{Allowed: false, Reason: ReasonDenied}
}
