package domain

import (
	"encoding/json"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"        json:"_id"`
	Code  string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Extra map[string]any     `bson:",inline"              json:"-"`
}

// Payment is the client's record of a settled charge. TransactionID is the
// gateway reference and makes a retried completion idempotent.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"           json:"_id"`
	UserEmail     string             `bson:"userEmail"               json:"userEmail"`
	Price         float64            `bson:"price,omitempty"         json:"price,omitempty"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Extra         map[string]any     `bson:",inline"                 json:"-"`
}

type couponDoc Coupon
type paymentJSON Payment

func (c Coupon) MarshalJSON() ([]byte, error) { return marshalWithExtra(couponDoc(c), c.Extra) }

func (c *Coupon) UnmarshalJSON(b []byte) error {
	var v couponDoc
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*c = Coupon(v)
	return nil
}

// UnmarshalBSON keeps mistyped stored fields in Extra, see Product.
func (c *Coupon) UnmarshalBSON(data []byte) error {
	var v couponDoc
	misfit, err := unmarshalLenient(data, &v)
	if err != nil {
		return err
	}
	v.Extra = withMisfits(v.Extra, misfit)
	*c = Coupon(v)
	return nil
}

func (p Payment) MarshalJSON() ([]byte, error) { return marshalWithExtra(paymentJSON(p), p.Extra) }

func (p *Payment) UnmarshalJSON(b []byte) error {
	var v paymentJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = Payment(v)
	return nil
}
