package domain

import "github.com/shopspring/decimal"

func init() {
	// The commerce API reads prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Offer is one store's price for a product.
type Offer struct {
	StoreID int64           `json:"supermercado_id"`
	Price   decimal.Decimal `json:"preco"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nome"`
	Image       string  `json:"imagem,omitempty"`
	Category    string  `json:"categoria,omitempty"`
	Brand       string  `json:"marca,omitempty"`
	Description string  `json:"descricao,omitempty"`
	Offers      []Offer `json:"precos,omitempty"`
}

// PriceAt resolves the product price for a store. ok is false when the store
// has no offer for this product.
func (p Product) PriceAt(storeID int64) (price decimal.Decimal, ok bool) {
	for _, o := range p.Offers {
		if o.StoreID == storeID {
			return o.Price, true
		}
	}
	return decimal.Zero, false
}

// Store is a participating supermarket ("empresa" on the commerce API).
type Store struct {
	ID      int64  `json:"id"`
	Name    string `json:"nome"`
	Address string `json:"endereco,omitempty"`
	Logo    string `json:"img,omitempty"`
	CNPJ    string `json:"cnpj,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Ref is the trimmed copy of the store embedded in cart lines.
func (s Store) Ref() StoreRef {
	return StoreRef{ID: s.ID, Name: s.Name, Address: s.Address}
}

type StoreRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"nome"`
	Address string `json:"endereco,omitempty"`
}

type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories is the fixed category list shown on the home page.
var Categories = []Category{
	{Slug: "hortifruti", Name: "Hortifruti", Icon: "https://cdn-icons-png.flaticon.com/512/5346/5346400.png"},
	{Slug: "acougue", Name: "Açougue", Icon: "https://cdn-icons-png.flaticon.com/512/1534/1534825.png"},
	{Slug: "padaria", Name: "Padaria", Icon: "https://cdn-icons-png.flaticon.com/512/7547/7547106.png"},
	{Slug: "laticinios", Name: "Laticínios", Icon: "https://cdn-icons-png.flaticon.com/512/3070/3070925.png"},
	{Slug: "bebidas", Name: "Bebidas", Icon: "https://cdn-icons-png.freepik.com/256/2405/2405451.png"},
	{Slug: "limpeza", Name: "Limpeza", Icon: "https://cdn-icons-png.freepik.com/512/994/994644.png"},
	{Slug: "frios", Name: "Frios", Icon: "https://cdn-icons-png.flaticon.com/512/869/869664.png"},
	{Slug: "higiene", Name: "Higiene", Icon: "https://cdn-icons-png.flaticon.com/512/7575/7575083.png"},
}

// CategoryBySlug reports whether slug is one of the known categories.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
