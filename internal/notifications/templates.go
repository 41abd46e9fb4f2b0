package notifications

import (
	"fmt"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
)

// AddedToCart is emitted by the HTTP layer after a successful add-to-cart.
func AddedToCart(userID, productID, productName string, quantity int) NewNotification {
	return NewNotification{
		UserID:  userID,
		Type:    enums.NotificationTypeProduct,
		Title:   "Added to cart",
		Message: fmt.Sprintf("%s has been added to your cart", productName),
		Data:    map[string]any{"product_id": productID, "quantity": quantity},
	}
}

// OrderUpdate describes an order status change.
func OrderUpdate(userID, orderNumber, status string) NewNotification {
	return NewNotification{
		UserID:  userID,
		Type:    enums.NotificationTypeOrder,
		Title:   "Order Update",
		Message: fmt.Sprintf("Your order #%s is now %s", orderNumber, status),
		Data:    map[string]any{"order_number": orderNumber, "status": status},
	}
}

// VendorMessage is a free-form notification addressed to a vendor.
func VendorMessage(userID, title, message string) NewNotification {
	return NewNotification{
		UserID:  userID,
		Type:    enums.NotificationTypeVendor,
		Title:   title,
		Message: message,
	}
}
