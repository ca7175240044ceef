package handlers

import (
	"mercacomp/internal/cart"
	"mercacomp/internal/repos"
	"mercacomp/internal/services"
)

type Deps struct {
	CartHandler     *CartHandler
	AddressHandler  *AddressHandler
	CheckoutHandler *CheckoutHandler
	CatalogHandler  *CatalogHandler
	AuthHandler     *AuthHandler
	AdminHandler    *AdminHandler

	Auth *services.AuthService
}

func NewDeps(store repos.Store, api services.API, postal services.PostalLookup, cartCfg cart.Config) *Deps {
	cartRepo := repos.NewCartRepo(store)
	addrRepo := repos.NewAddressRepo(store)
	checkoutRepo := repos.NewCheckoutRepo(store)
	sessionRepo := repos.NewSessionRepo(store)

	cartSvc := services.NewCartService(cartRepo, sessionRepo, api, cartCfg)
	addrSvc := services.NewAddressService(addrRepo, postal)
	checkoutSvc := services.NewCheckoutService(cartRepo, addrRepo, checkoutRepo, sessionRepo, api, cartCfg)
	catalogSvc := services.NewCatalogService(sessionRepo, api)
	authSvc := services.NewAuthService(sessionRepo, cartRepo, addrRepo, api)
	adminSvc := services.NewAdminService(sessionRepo, api)

	return &Deps{
		CartHandler:     &CartHandler{Cart: cartSvc, Auth: authSvc},
		AddressHandler:  &AddressHandler{Addresses: addrSvc, Auth: authSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc, Auth: authSvc},
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc, Auth: authSvc},
		AuthHandler:     &AuthHandler{Auth: authSvc},
		AdminHandler:    &AdminHandler{Admin: adminSvc, Auth: authSvc},
		Auth:            authSvc,
	}
}
