package notification

import (
	"context"

	"doorparts-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaffLister enumerates the staff accounts that receive back-office
// notifications.
type StaffLister interface {
	ActiveStaffIDs(ctx context.Context) ([]uint, error)
}

// Announcer fans domain events out to every active staff member. It backs
// the notifier hooks of the order and enquiry flows.
type Announcer struct {
	svc   Service
	staff StaffLister
}

func NewAnnouncer(svc Service, staff StaffLister) *Announcer {
	return &Announcer{svc: svc, staff: staff}
}

func (a *Announcer) OrderEvent(ctx context.Context, event, title, body string, orderID uuid.UUID) {
	orderRef := orderID.String()
	a.fanOut(ctx, func(staffID uint) *Notification {
		return &Notification{
			StaffID: staffID,
			Type:    Type(event),
			Title:   title,
			Body:    body,
			OrderID: &orderRef,
		}
	})
}

func (a *Announcer) EnquiryReceived(ctx context.Context, name, email string) {
	a.fanOut(ctx, func(staffID uint) *Notification {
		return &Notification{
			StaffID: staffID,
			Type:    TypeNewEnquiry,
			Title:   "New enquiry from " + name,
			Body:    email + " sent a new enquiry",
		}
	})
}

func (a *Announcer) fanOut(ctx context.Context, build func(staffID uint) *Notification) {
	staffIDs, err := a.staff.ActiveStaffIDs(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to list notification recipients", zap.Error(err))
		return
	}
	a.svc.NotifyAll(ctx, staffIDs, build)
}
