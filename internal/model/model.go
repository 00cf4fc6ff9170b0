package model

import (
	"github.com/shopspring/decimal"
)

type CartType string

const (
	CartTypeComun         CartType = "COMUN"
	CartTypeVIP           CartType = "VIP"
	CartTypeFechaEspecial CartType = "FECHA_ESPECIAL"
)

func (t CartType) Valid() bool {
	switch t {
	case CartTypeComun, CartTypeVIP, CartTypeFechaEspecial:
		return true
	default:
		return false
	}
}

// Label is the display name used by the cart pages.
func (t CartType) Label() string {
	switch t {
	case CartTypeVIP:
		return "VIP"
	case CartTypeFechaEspecial:
		return "Fecha especial"
	case CartTypeComun:
		return "Común"
	default:
		return string(t)
	}
}

type CartStatus string

const (
	CartStatusActivo     CartStatus = "ACTIVO"
	CartStatusFinalizado CartStatus = "FINALIZADO"
)

type Profile struct {
	IsVIP       bool    `json:"is_vip"`
	VipSince    *string `json:"vip_since"`
	VipUntil    *string `json:"vip_until"`
	IsVipActive bool    `json:"is_vip_active"`
}

type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Profile   *Profile `json:"profile,omitempty"`
}

func (u *User) IsVIP() bool {
	return u != nil && u.Profile != nil && u.Profile.IsVIP
}

// Session is the body of /session/me/ and /session/login/.
type Session struct {
	User *User `json:"user"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsAvailable bool            `json:"is_available"`
}

type CartItem struct {
	ID         int             `json:"id"`
	Product    *Product        `json:"product,omitempty"`
	ProductID  int             `json:"product_id,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type Discount struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type Cart struct {
	ID               int             `json:"id"`
	User             int             `json:"user"`
	CartType         CartType        `json:"cart_type"`
	Status           CartStatus      `json:"status"`
	Items            []CartItem      `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	DiscountsApplied []Discount      `json:"discounts_applied"`
	TotalQuantity    int             `json:"total_quantity"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// HasDiscount reports whether the backend charged less than the subtotal.
func (c Cart) HasDiscount() bool {
	return !c.TotalPayable.Equal(c.Subtotal)
}

// QuantityOf returns how many units of productID the cart holds.
func (c Cart) QuantityOf(productID int) int {
	n := 0
	for _, it := range c.Items {
		id := it.ProductID
		if it.Product != nil {
			id = it.Product.ID
		}
		if id == productID {
			n += it.Quantity
		}
	}
	return n
}

type Order struct {
	ID        int             `json:"id"`
	Cart      int             `json:"cart"`
	OrderedAt string          `json:"ordered_at"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type Promotion struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type PromotionList struct {
	EffectiveDate string      `json:"effective_date"`
	Promotions    []Promotion `json:"promotions"`
}

type VipStatus struct {
	IsVIP       bool    `json:"is_vip"`
	VipSince    *string `json:"vip_since"`
	VipUntil    *string `json:"vip_until"`
	IsVipActive bool    `json:"is_vip_active"`
}

type VipChanges struct {
	BecameVIP []User `json:"became_vip"`
	LostVIP   []User `json:"lost_vip"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

// Request bodies.

type CreateCartRequest struct {
	CartType CartType `json:"cart_type"`
}

type AddItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
}

type FinalizeRequest struct {
	CartID int `json:"cart_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}
