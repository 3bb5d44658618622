package permission

// Permission is an atomic capability checked at authorization time.
type Permission string

const (
	// Event lifecycle.
	EventCreate  Permission = "event:create"
	EventRead    Permission = "event:read"
	EventUpdate  Permission = "event:update"
	EventDelete  Permission = "event:delete"
	EventPublish Permission = "event:publish"

	// Ticketing.
	TicketPurchase Permission = "ticket:purchase"
	TicketRead     Permission = "ticket:read"
	TicketManage   Permission = "ticket:manage"
	TicketRefund   Permission = "ticket:refund"

	// Account profile.
	ProfileRead   Permission = "profile:read"
	ProfileUpdate Permission = "profile:update"

	// Payments.
	PaymentRead   Permission = "payment:read"
	PaymentRefund Permission = "payment:refund"

	// Platform administration.
	UserManage       Permission = "user:manage"
	PlatformSettings Permission = "platform:settings"
)

// All lists every permission known to the platform. Order matches the
// constant declarations above.
var All = []Permission{
	EventCreate,
	EventRead,
	EventUpdate,
	EventDelete,
	EventPublish,
	TicketPurchase,
	TicketRead,
	TicketManage,
	TicketRefund,
	ProfileRead,
	ProfileUpdate,
	PaymentRead,
	PaymentRefund,
	UserManage,
	PlatformSettings,
}
