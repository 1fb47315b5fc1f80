package middleware

import "context"

type contextKey string

const (
	staffIDKey    contextKey = "staff_id"
	staffEmailKey contextKey = "staff_email"
	staffRoleKey  contextKey = "staff_role"
)

// SetStaffContext sets the authenticated staff identity into context.
func SetStaffContext(ctx context.Context, id uint, email, role string) context.Context {
	ctx = context.WithValue(ctx, staffIDKey, id)
	ctx = context.WithValue(ctx, staffEmailKey, email)
	ctx = context.WithValue(ctx, staffRoleKey, role)
	return ctx
}

func StaffIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(staffIDKey).(uint)
	return id, ok
}

func StaffEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(staffEmailKey).(string)
	return email
}

func StaffRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(staffRoleKey).(string)
	return role
}
