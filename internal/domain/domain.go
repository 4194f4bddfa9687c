package domain

import "time"

type Advertisement struct {
	ID           int64     `json:"id" db:"id"`
	Owner        string    `json:"owner" db:"owner"`
	Header       string    `json:"header" db:"header"`
	Description  string    `json:"description" db:"description"`
	CreationTime time.Time `json:"creation_time" db:"creation_time"`
}

// CreateAdvertisement is the writable part of an advertisement on creation.
// ID is optional, the store assigns one when it is nil.
type CreateAdvertisement struct {
	ID          *int64 `json:"id" validate:"omitnil,gt=0"`
	Owner       string `json:"owner" validate:"required,max=120"`
	Header      string `json:"header" validate:"required,max=120"`
	Description string `json:"description" validate:"required"`
}

// AdvertisementPatch lists the fields to overwrite. Nil fields are left as is.
type AdvertisementPatch struct {
	Owner       *string `json:"owner" validate:"omitnil,required,max=120"`
	Header      *string `json:"header" validate:"omitnil,required,max=120"`
	Description *string `json:"description" validate:"omitnil,required"`
}

// Empty reports whether the patch changes nothing.
func (p *AdvertisementPatch) Empty() bool {
	return p.Owner == nil && p.Header == nil && p.Description == nil
}
