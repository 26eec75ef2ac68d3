package catalog

import "strings"

// Order statuses found in the seed data.
const (
	StatusDelivered = "delivered"
	StatusInTransit = "in-transit"
	StatusFulfilled = "fulfilled"
	StatusError     = "error"
)

// OrderService answers keyed order lookups. Orders are indexed once at
// construction; lookups normalize inputs the same way the index does.
type OrderService struct {
	orders map[orderKey]Order
}

type orderKey struct {
	email       string
	orderNumber string
}

// NewOrderService indexes orders by normalized email and order number.
func NewOrderService(orders []Order) *OrderService {
	idx := make(map[orderKey]Order, len(orders))
	for _, o := range orders {
		idx[keyFor(o.Email, o.OrderNumber)] = o
	}
	return &OrderService{orders: idx}
}

// Lookup finds an order by customer email and order number. Email is
// case-insensitive; the order number tolerates lowercase letters and a
// missing # prefix ("w001" finds "#W001").
func (s *OrderService) Lookup(email, orderNumber string) (Order, bool) {
	o, ok := s.orders[keyFor(email, orderNumber)]
	return o, ok
}

// Len returns the number of indexed orders.
func (s *OrderService) Len() int {
	return len(s.orders)
}

func keyFor(email, orderNumber string) orderKey {
	return orderKey{
		email:       NormalizeEmail(email),
		orderNumber: NormalizeOrderNumber(orderNumber),
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeOrderNumber trims, uppercases, and ensures the # prefix.
func NormalizeOrderNumber(orderNumber string) string {
	n := strings.ToUpper(strings.TrimSpace(orderNumber))
	if !strings.HasPrefix(n, "#") {
		n = "#" + n
	}
	return n
}
