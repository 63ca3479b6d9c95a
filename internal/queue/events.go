package queue

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routing keys on the events exchange.
const (
	KeyUserRegistered   = "user.registered"
	KeyProductReported  = "product.reported"
	KeyPaymentCompleted = "payment.completed"
)

type UserRegistered struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
}

type ProductReported struct {
	ProductID   primitive.ObjectID `json:"product_id"`
	ProductName string             `json:"product_name"`
	OwnerEmail  string             `json:"owner_email"`
	ReportedBy  string             `json:"reported_by"`
}

type PaymentCompleted struct {
	Email         string    `json:"email"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Price         float64   `json:"price"`
	At            time.Time `json:"at"`
}
