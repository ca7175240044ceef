package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"mercacomp/internal/errs"
)

var ErrPostalNotFound = errs.New(http.StatusNotFound, "postal_not_found", "CEP não encontrado.")

// PostalAddress is the part of a postal code lookup used to prefill the address form.
type PostalAddress struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type PostalClient struct {
	baseURL string
	http    *http.Client
}

// NewPostalClient targets a ViaCEP compatible service, e.g. https://viacep.com.br/ws.
func NewPostalClient(baseURL string, hc *http.Client) *PostalClient {
	if hc == nil {
		hc = NewTracedHTTPClient(5 * time.Second)
	}
	return &PostalClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Lookup expects an already normalized 8 digit code.
func (p *PostalClient) Lookup(ctx context.Context, cep string) (PostalAddress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+cep+"/json/", nil)
	if err != nil {
		return PostalAddress{}, errors.Wrap(err, "build postal request")
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return PostalAddress{}, errors.Wrapf(errs.ErrUpstream, "postal %s: %v", cep, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return PostalAddress{}, ErrPostalNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return PostalAddress{}, errors.Wrapf(errs.ErrUpstream, "postal status %d", resp.StatusCode)
	}

	var body struct {
		Logradouro string `json:"logradouro"`
		Bairro     string `json:"bairro"`
		Localidade string `json:"localidade"`
		UF         string `json:"uf"`
		Erro       any    `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return PostalAddress{}, errors.Wrapf(errs.ErrUpstream, "decode postal: %v", err)
	}
	// ViaCEP answers {"erro": true} or {"erro": "true"} for unknown codes.
	if body.Erro != nil && body.Erro != false {
		return PostalAddress{}, ErrPostalNotFound
	}
	return PostalAddress{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}
