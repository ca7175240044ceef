package domain

import "github.com/shopspring/decimal"

// Address is a delivery address owned by the client profile.
type Address struct {
	ID           string `json:"id"`
	Street       string `json:"street" validate:"required,max=120"`
	Number       string `json:"number" validate:"required,max=20"`
	Complement   string `json:"complement,omitempty" validate:"max=60"`
	Neighborhood string `json:"neighborhood" validate:"max=80"`
	City         string `json:"city" validate:"required,max=80"`
	State        string `json:"state" validate:"omitempty,len=2,alpha"`
	Zipcode      string `json:"zipcode" validate:"omitempty,len=8,numeric"`
}

// User is the client profile returned by the commerce API on login.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
	CPF   string `json:"cpf,omitempty"`
	Phone string `json:"telefone,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == "ADMIN" }

// Order and Review dates are kept as the API formats them.
type Order struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"id_cliente"`
	Client    *User           `json:"cliente,omitempty"`
	Value     decimal.Decimal `json:"valor"`
	CreatedAt string          `json:"data_pedido,omitempty"`
}

type Review struct {
	ID        int64    `json:"id"`
	Client    *User    `json:"cliente,omitempty"`
	Product   *Product `json:"produto,omitempty"`
	Rating    int      `json:"nota"`
	Comment   string   `json:"comentario,omitempty"`
	CreatedAt string   `json:"data_avaliacao,omitempty"`
}
