package domain

import (
	"encoding/json"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review and Report are append-only records keyed by product id.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID string             `bson:"productId"     json:"productId"`
	Extra     map[string]any     `bson:",inline"       json:"-"`
}

type Report struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID string             `bson:"productId"     json:"productId"`
	Extra     map[string]any     `bson:",inline"       json:"-"`
}

type reviewJSON Review
type reportJSON Report

func (r Review) MarshalJSON() ([]byte, error) { return marshalWithExtra(reviewJSON(r), r.Extra) }

func (r *Review) UnmarshalJSON(b []byte) error {
	var v reviewJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*r = Review(v)
	return nil
}

func (r Report) MarshalJSON() ([]byte, error) { return marshalWithExtra(reportJSON(r), r.Extra) }

func (r *Report) UnmarshalJSON(b []byte) error {
	var v reportJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*r = Report(v)
	return nil
}
