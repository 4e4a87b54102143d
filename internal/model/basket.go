package model

import "time"

const (
	// FreeDeliveryThreshold is the subtotal (cents) from which delivery is free.
	FreeDeliveryThreshold int64 = 10000

	// StandardDeliveryFee is charged below the free delivery threshold.
	StandardDeliveryFee int64 = 500
)

// Coupon is a discount that can be attached to a basket.
// Exactly one of AmountOff and PercentOff is expected to be non-zero.
type Coupon struct {
	Code       string `json:"code" db:"coupon_code"`
	Name       string `json:"name" db:"coupon_name"`
	AmountOff  int64  `json:"amountOff" db:"coupon_amount_off"`
	PercentOff int    `json:"percentOff" db:"coupon_percent_off"`
}

// PaymentIntent is the external payment session referenced by a basket.
type PaymentIntent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// BasketItem is a single product line in a basket.
type BasketItem struct {
	ProductID int64   `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Product   Product `json:"-" db:"-"`
}

// LineTotal returns quantity multiplied by the unit price.
func (i BasketItem) LineTotal() int64 {
	return int64(i.Quantity) * i.Product.Price
}

// Basket is a guest shopping cart identified by an opaque token.
type Basket struct {
	ID              int64        `json:"-" db:"id"`
	Token           string       `json:"basketId" db:"token"`
	Items           []BasketItem `json:"items" db:"-"`
	Coupon          *Coupon      `json:"coupon,omitempty" db:"-"`
	PaymentIntentID *string      `json:"paymentIntentId,omitempty" db:"payment_intent_id"`
	ClientSecret    *string      `json:"clientSecret,omitempty" db:"client_secret"`
	Version         int64        `json:"-" db:"version"`
	CreatedAt       time.Time    `json:"-" db:"created_at"`
	UpdatedAt       time.Time    `json:"-" db:"updated_at"`
}

// AddItem adds quantity of product to the basket, merging into an existing line.
func (b *Basket) AddItem(product Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if item := b.FindItem(product.ID); item != nil {
		item.Quantity += quantity
		item.Product = product
		return nil
	}

	b.Items = append(b.Items, BasketItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Product:   product,
	})
	return nil
}

// RemoveItem decrements the line for productID and drops it once the
// quantity reaches zero. Removing an absent product is a no-op.
func (b *Basket) RemoveItem(productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	for i := range b.Items {
		if b.Items[i].ProductID != productID {
			continue
		}
		b.Items[i].Quantity -= quantity
		if b.Items[i].Quantity <= 0 {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
		}
		return nil
	}

	return nil
}

// FindItem returns the line for productID, or nil.
func (b *Basket) FindItem(productID int64) *BasketItem {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return &b.Items[i]
		}
	}
	return nil
}

// HasPaymentIntent reports whether an external payment session is attached.
func (b *Basket) HasPaymentIntent() bool {
	return b.ClientSecret != nil && *b.ClientSecret != ""
}

// Subtotal sums the line totals.
func (b *Basket) Subtotal() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.LineTotal()
	}
	return total
}

// Discount returns the coupon reduction, never more than the subtotal.
func (b *Basket) Discount() int64 {
	if b.Coupon == nil {
		return 0
	}

	subtotal := b.Subtotal()
	var discount int64
	switch {
	case b.Coupon.AmountOff > 0:
		discount = b.Coupon.AmountOff
	case b.Coupon.PercentOff > 0:
		discount = subtotal * int64(b.Coupon.PercentOff) / 100
	}

	if discount > subtotal {
		return subtotal
	}
	return discount
}

// DeliveryFee returns the delivery charge for the current subtotal.
func (b *Basket) DeliveryFee() int64 {
	subtotal := b.Subtotal()
	if subtotal == 0 || subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return StandardDeliveryFee
}

// Total is the amount due: subtotal minus discount plus delivery.
func (b *Basket) Total() int64 {
	return b.Subtotal() - b.Discount() + b.DeliveryFee()
}

// BasketItemDTO is the client-facing view of a basket line.
type BasketItemDTO struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	PictureURL string `json:"pictureUrl"`
	Brand      string `json:"brand"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"`
	LineTotal  int64  `json:"lineTotal"`
}

// BasketDTO is the client-facing view of a basket with derived totals.
type BasketDTO struct {
	BasketID        string          `json:"basketId"`
	Items           []BasketItemDTO `json:"items"`
	Coupon          *Coupon         `json:"coupon,omitempty"`
	Subtotal        int64           `json:"subtotal"`
	Discount        int64           `json:"discount"`
	DeliveryFee     int64           `json:"deliveryFee"`
	Total           int64           `json:"total"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	ClientSecret    string          `json:"clientSecret,omitempty"`
}

// ToDTO flattens the basket for responses.
func (b *Basket) ToDTO() BasketDTO {
	items := make([]BasketItemDTO, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BasketItemDTO{
			ProductID:  item.ProductID,
			Name:       item.Product.Name,
			Price:      item.Product.Price,
			PictureURL: item.Product.PictureURL,
			Brand:      item.Product.Brand,
			Type:       item.Product.Type,
			Quantity:   item.Quantity,
			LineTotal:  item.LineTotal(),
		})
	}

	dto := BasketDTO{
		BasketID:    b.Token,
		Items:       items,
		Coupon:      b.Coupon,
		Subtotal:    b.Subtotal(),
		Discount:    b.Discount(),
		DeliveryFee: b.DeliveryFee(),
		Total:       b.Total(),
	}
	if b.PaymentIntentID != nil {
		dto.PaymentIntentID = *b.PaymentIntentID
	}
	if b.ClientSecret != nil {
		dto.ClientSecret = *b.ClientSecret
	}
	return dto
}
