package command

import "github.com/example/ec-storefront/internal/readmodel"

// Session Commands
type LoginWithEmail struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginWithGoogle struct {
	IDToken string `json:"id_token"`
}

// Order Commands
type PlaceOrder struct {
	ShipTo  readmodel.ShipTo  `json:"ship_to"`
	Contact readmodel.Contact `json:"contact"`
}
