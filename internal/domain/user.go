package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUnset     Role = ""
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole accepts the stored role names; "" and "user" both mean unset.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator:
		return Role(s), nil
	case RoleUnset, "user":
		return RoleUnset, nil
	}
	return RoleUnset, fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"         json:"_id"`
	Email     string             `bson:"email"                 json:"email"`
	Name      string             `bson:"name,omitempty"        json:"name,omitempty"`
	Role      Role               `bson:"role,omitempty"        json:"role,omitempty"`
	UpVotes   []string           `bson:"upVotes,omitempty"     json:"upVotes,omitempty"`   // product ids
	DownVotes []string           `bson:"downVotes,omitempty"   json:"downVotes,omitempty"` // product ids
	Premium   Flag               `bson:"premiumUser,omitempty" json:"premiumUser,omitempty"`
	Extra     map[string]any     `bson:",inline"               json:"-"`
}

func (u *User) HasUpVoted(productID string) bool   { return slices.Contains(u.UpVotes, productID) }
func (u *User) HasDownVoted(productID string) bool { return slices.Contains(u.DownVotes, productID) }

type userJSON User

func (u User) MarshalJSON() ([]byte, error) { return marshalWithExtra(userJSON(u), u.Extra) }

func (u *User) UnmarshalJSON(b []byte) error {
	var v userJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	extra, err := extraFields(b, reflect.TypeOf(v))
	if err != nil {
		return err
	}
	v.Extra = extra
	*u = User(v)
	return nil
}
