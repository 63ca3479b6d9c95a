package domain

import (
	"encoding/json"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrendingLimit caps the trending list.
const TrendingLimit = 6

type Owner struct {
	Name  string `bson:"name,omitempty"  json:"name,omitempty"`
	Email string `bson:"email"           json:"email"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// Product counters only ever move through $inc; there is no decrement.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"          json:"_id"`
	Name         string             `bson:"productName,omitempty"  json:"productName,omitempty"`
	Image        string             `bson:"productImage,omitempty" json:"productImage,omitempty"`
	Description  string             `bson:"description,omitempty"  json:"description,omitempty"`
	ExternalLink string             `bson:"externalLink,omitempty" json:"externalLink,omitempty"`
	Tags         []string           `bson:"tags,omitempty"         json:"tags,omitempty"`
	Owner        Owner              `bson:"owner"                  json:"owner"`
	UpVote       int64              `bson:"upVote"                 json:"upVote"`
	DownVote     int64              `bson:"downVote"               json:"downVote"`
	Report       int64              `bson:"report"                 json:"report"`
	Featured     Flag               `bson:"featured,omitempty"     json:"featured,omitempty"`
	Status       string             `bson:"status,omitempty"       json:"status,omitempty"`
	CreatedAt    *time.Time         `bson:"timestamp,omitempty"    json:"timestamp,omitempty"`
	Extra        map[string]any     `bson:",inline"                json:"-"`
}

type productDoc Product

func (p Product) MarshalJSON() ([]byte, error) { return marshalWithExtra(productDoc(p), p.Extra) }

func (p *Product) UnmarshalJSON(b []byte) error {
	var v productDoc
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = Product(v)
	return nil
}

// UnmarshalBSON never fails on a field whose stored type was changed by a
// generic update; the stored value is kept in Extra and served as-is.
func (p *Product) UnmarshalBSON(data []byte) error {
	var v productDoc
	misfit, err := unmarshalLenient(data, &v)
	if err != nil {
		return err
	}
	v.Extra = withMisfits(v.Extra, misfit)
	*p = Product(v)
	return nil
}

// ProductQuery is the listing filter shared by pageProducts and productCount.
type ProductQuery struct {
	Tags []string // matched case-insensitively, any-of
	Page int      // 1-based
	Size int
}
