package notify

import (
	"fmt"
	"strings"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

// OrderNotification formats a freshly committed order for the operators.
func OrderNotification(order *domain.Order) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", order.FullName())
	fmt.Fprintf(&b, "Phone: %s\n", order.Phone)
	if order.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", order.Email)
	}
	fmt.Fprintf(&b, "Address: %s, %s\n", order.City, order.Address)
	if order.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", order.Comment)
	}
	b.WriteString("\nItems:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d = %s\n", item.ProductName, item.Quantity, item.TotalPrice().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s", order.TotalPrice.StringFixed(2))

	return Notification{
		Subject: fmt.Sprintf("New order %s", order.ID),
		Body:    b.String(),
	}
}

// ContactNotification formats a contact form submission.
func ContactNotification(msg *domain.ContactMessage) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	if msg.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	}
	fmt.Fprintf(&b, "\n%s", msg.Message)

	subject := "New contact message"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	return Notification{
		Subject: subject,
		Body:    b.String(),
	}
}
