package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"mercacomp/internal/domain"
)

type ProductQuery struct {
	Category string
	Q        string
}

func (c *Client) Products(ctx context.Context, token string, q ProductQuery) ([]domain.Product, error) {
	path := "/produtos"
	v := url.Values{}
	if q.Category != "" {
		v.Set("categoria", q.Category)
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []domain.Product
	err := c.do(ctx, call{method: http.MethodGet, path: path, token: token, authed: true}, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, token string, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/produtos/%d", id), token: token, authed: true}, &out)
	return out, err
}

// storeList accepts both a bare array and {"empresas": [...]}.
type storeList []domain.Store

func (l *storeList) UnmarshalJSON(b []byte) error {
	var arr []domain.Store
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = arr
		return nil
	}
	var wrapped struct {
		Empresas []domain.Store `json:"empresas"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Empresas
	return nil
}

func (c *Client) Stores(ctx context.Context, token string) ([]domain.Store, error) {
	var out storeList
	err := c.do(ctx, call{method: http.MethodGet, path: "/empresas", token: token, authed: true}, &out)
	return out, err
}

func (c *Client) Store(ctx context.Context, token string, id int64) (domain.Store, error) {
	var out domain.Store
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/empresas/%d", id), token: token, authed: true}, &out)
	return out, err
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"usuario"`
}

func (c *Client) Login(ctx context.Context, cred Credentials) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/login",
		body:     cred,
		fallback: "ERRO: E-mail ou Senha incorretos.",
	}, &out)
	return out, err
}

type Registration struct {
	Name     string `json:"nome" validate:"required,max=120"`
	CPF      string `json:"cpf" validate:"required,len=11,numeric"`
	Phone    string `json:"telefone" validate:"required,min=10,max=11,numeric"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=6,max=128"`
}

func (c *Client) Register(ctx context.Context, r Registration) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/cadastro-cliente",
		body:     r,
		fallback: "ERRO: Falha ao cadastrar. Verifique os dados.",
	}, nil)
}

type ProfileUpdate struct {
	Name  string `json:"nome" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"telefone,omitempty" validate:"omitempty,min=10,max=11,numeric"`
}

func (c *Client) UpdateClient(ctx context.Context, token string, id int64, p ProfileUpdate) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/clientes/%d", id), token: token, body: p, authed: true}, &out)
	return out, err
}

func (c *Client) Clients(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	err := c.do(ctx, call{method: http.MethodGet, path: "/clientes", token: token, authed: true}, &out)
	return out, err
}

func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/pedidos",
		token:    token,
		authed:   true,
		fallback: "Falha ao carregar pedidos: Erro no servidor.",
	}, &out)
	return out, err
}

type OrderItem struct {
	ProductID int64           `json:"produto_id"`
	StoreID   int64           `json:"supermercado_id"`
	Quantity  int             `json:"quantidade"`
	UnitPrice decimal.Decimal `json:"preco_unitario"`
}

type OrderRequest struct {
	Total         decimal.Decimal `json:"total"`
	Address       domain.Address  `json:"endereco"`
	PaymentMethod string          `json:"formaPagamento"`
	Items         []OrderItem     `json:"itens"`
	Stores        []int64         `json:"supermercados"`
}

type OrderReceipt struct {
	ID      int64  `json:"id"`
	Message string `json:"message,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (OrderReceipt, error) {
	var out OrderReceipt
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/pedidos",
		token:    token,
		body:     req,
		authed:   true,
		fallback: "Falha ao confirmar o pedido. Tente novamente.",
	}, &out)
	return out, err
}

func (c *Client) Reviews(ctx context.Context, token string) ([]domain.Review, error) {
	var out []domain.Review
	err := c.do(ctx, call{method: http.MethodGet, path: "/avaliacoes", token: token, authed: true}, &out)
	return out, err
}
