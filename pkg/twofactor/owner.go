package twofactor

import "strings"

// Owner references the account a record belongs to.
// Type tells apart owners of different kinds sharing one store (for example "user" and "admin").
type Owner struct {
	Type string `json:"type" bson:"type"`
	ID   string `json:"id" bson:"id"`
}

// NewOwner is a shorthand for Owner{Type: typ, ID: id}.
func NewOwner(typ, id string) Owner {
	return Owner{Type: typ, ID: id}
}

// String returns "type:id", the form used in cache keys, encryption scopes and logs.
func (o Owner) String() string {
	return o.Type + ":" + o.ID
}

func (o Owner) IsZero() bool {
	return o.Type == "" && o.ID == ""
}

// Validate requires both parts and forbids the "|" separator used by replay keys.
func (o Owner) Validate() error {
	if strings.TrimSpace(o.Type) == "" || strings.TrimSpace(o.ID) == "" {
		return ErrInvalidOwner
	}
	if strings.ContainsRune(o.Type, '|') || strings.ContainsRune(o.ID, '|') {
		return ErrInvalidOwner
	}
	return nil
}
