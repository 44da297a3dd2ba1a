package models

import "time"

// Priority orders notifications; higher values sort first.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the sort weight of p.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// NotificationType groups notifications by the condition that raised them.
type NotificationType string

const (
	NotificationStock     NotificationType = "stock"
	NotificationOrder     NotificationType = "order"
	NotificationDue       NotificationType = "customer_due"
	NotificationExchange  NotificationType = "exchange"
	NotificationMilestone NotificationType = "sales_milestone"
)

// Action is a navigation target a consumer can open.
type Action struct {
	Module string            `json:"module"`
	Params map[string]string `json:"params,omitempty"`
}

// Notification is one derived alert. Read is never stored with the
// notification; it is re-applied from the viewer's read list on every load.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Priority  Priority         `json:"priority"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	Action    *Action          `json:"action,omitempty"`
	Roles     []StaffRole      `json:"roles"`
}

// VisibleTo reports whether role is in the notification's allowed set.
func (n Notification) VisibleTo(role StaffRole) bool {
	for _, r := range n.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NavigationIntent asks a consumer to open a module. Routing is the consumer's concern.
type NavigationIntent struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Action
}
