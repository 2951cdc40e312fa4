package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/creachadair/jrpc2"

	"github.com/shopctl/shopctl/internal/amazon"
	"github.com/shopctl/shopctl/internal/profile"
	"github.com/shopctl/shopctl/internal/session"
	"github.com/shopctl/shopctl/internal/version"
)

// Shop is the operation surface the RPC methods drive. *amazon.Client
// satisfies it; tests substitute a stub.
type Shop interface {
	Search(ctx context.Context, query string) ([]amazon.SearchResult, error)
	Product(ctx context.Context, asin string) (*amazon.Product, error)
	Cart(ctx context.Context) (*amazon.Cart, error)
	AddToCart(ctx context.Context, asin string) (*amazon.AddToCartResult, error)
	ClearCart(ctx context.Context) (*amazon.ClearCartResult, error)
	Orders(ctx context.Context) ([]amazon.Order, error)
	MockBuyNow(ctx context.Context, asin string) (*amazon.BuyNowResult, error)
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

// ProfileListResult is the response for profile.list.
type ProfileListResult struct {
	Active   string                `json:"active"`
	Profiles []profile.ProfileInfo `json:"profiles"`
}

// NameParam is a common input carrying a profile name.
type NameParam struct {
	Name string `json:"name"`
}

// OptionalNameParam carries a profile name that may be empty.
type OptionalNameParam struct {
	Name string `json:"name,omitempty"`
}

// SaveParams is the input for profile.save.
type SaveParams struct {
	Name    string          `json:"name"`
	Cookies json.RawMessage `json:"cookies"`
}

// SaveResult is the response for profile.save.
type SaveResult struct {
	Name    string `json:"name"`
	Cookies int    `json:"cookies"`
}

// SwitchResult is the response for profile.switch and profile.confirm.
type SwitchResult struct {
	Active    string `json:"active"`
	Confirmed bool   `json:"confirmed"`
}

// QueryParams is the input for amazon.search.
type QueryParams struct {
	Query string `json:"query"`
}

// ASINParam is a common input carrying a catalog identifier.
type ASINParam struct {
	ASIN string `json:"asin"`
}

func (s *Server) systemGetVersion(_ context.Context) (*VersionResult, error) {
	info := version.Get()
	return &VersionResult{
		Version:   s.version,
		Commit:    info.Commit,
		GoVersion: info.GoVersion,
	}, nil
}

func (s *Server) profileList(_ context.Context) (*ProfileListResult, error) {
	return &ProfileListResult{
		Active:   s.session.Active(),
		Profiles: s.session.Store().List(),
	}, nil
}

func (s *Server) profileSwitch(_ context.Context, p *NameParam) (*SwitchResult, error) {
	if err := s.session.Switch(p.Name); err != nil {
		return nil, rpcError(err)
	}
	return &SwitchResult{Active: s.session.Active(), Confirmed: s.session.Confirmed()}, nil
}

func (s *Server) profileConfirm(_ context.Context, p *OptionalNameParam) (*SwitchResult, error) {
	if err := s.session.Confirm(p.Name); err != nil {
		return nil, rpcError(err)
	}
	return &SwitchResult{Active: s.session.Active(), Confirmed: true}, nil
}

func (s *Server) profileSave(_ context.Context, p *SaveParams) (*SaveResult, error) {
	n, err := s.session.Store().Save(p.Name, p.Cookies)
	if err != nil {
		return nil, rpcError(err)
	}
	return &SaveResult{Name: p.Name, Cookies: n}, nil
}

func (s *Server) amazonSearch(ctx context.Context, p *QueryParams) ([]amazon.SearchResult, error) {
	if p.Query == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: query"}
	}
	results, err := s.shop.Search(ctx, p.Query)
	if err != nil {
		return nil, rpcError(err)
	}
	return results, nil
}

func (s *Server) amazonProduct(ctx context.Context, p *ASINParam) (*amazon.Product, error) {
	product, err := s.shop.Product(ctx, p.ASIN)
	if err != nil {
		return nil, rpcError(err)
	}
	return product, nil
}

func (s *Server) amazonCart(ctx context.Context) (*amazon.Cart, error) {
	if err := s.requireConfirmed(); err != nil {
		return nil, err
	}
	cart, err := s.shop.Cart(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return cart, nil
}

func (s *Server) amazonAddToCart(ctx context.Context, p *ASINParam) (*amazon.AddToCartResult, error) {
	if err := s.requireConfirmed(); err != nil {
		return nil, err
	}
	res, err := s.shop.AddToCart(ctx, p.ASIN)
	if err != nil {
		return nil, rpcError(err)
	}
	return res, nil
}

func (s *Server) amazonClearCart(ctx context.Context) (*amazon.ClearCartResult, error) {
	if err := s.requireConfirmed(); err != nil {
		return nil, err
	}
	res, err := s.shop.ClearCart(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return res, nil
}

func (s *Server) amazonOrders(ctx context.Context) ([]amazon.Order, error) {
	if err := s.requireConfirmed(); err != nil {
		return nil, err
	}
	orders, err := s.shop.Orders(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return orders, nil
}

func (s *Server) amazonBuyNow(ctx context.Context, p *ASINParam) (*amazon.BuyNowResult, error) {
	if err := s.requireConfirmed(); err != nil {
		return nil, err
	}
	res, err := s.shop.MockBuyNow(ctx, p.ASIN)
	if err != nil {
		return nil, rpcError(err)
	}
	return res, nil
}

// requireConfirmed enforces the confirmation gate for identity-scoped
// methods. The error data carries the full prompt so the calling agent
// can render the choice and resubmit a profile.confirm.
func (s *Server) requireConfirmed() error {
	prompt := s.session.RequireConfirmation()
	if prompt == nil {
		return nil
	}
	data, err := json.Marshal(prompt)
	if err != nil {
		data = nil
	}
	return &jrpc2.Error{
		Code:    codeConfirmationRequired,
		Message: "profile confirmation required",
		Data:    data,
	}
}

// rpcError maps domain errors onto the RPC error taxonomy.
func rpcError(err error) error {
	var nf *profile.NotFoundError
	switch {
	case errors.As(err, &nf):
		data, _ := json.Marshal(struct {
			Available []string `json:"available"`
		}{nf.Available})
		return &jrpc2.Error{Code: codeProfileNotFound, Message: err.Error(), Data: data}
	case errors.Is(err, profile.ErrNotFound):
		return &jrpc2.Error{Code: codeProfileNotFound, Message: err.Error()}
	case errors.Is(err, amazon.ErrNotAuthenticated):
		return &jrpc2.Error{Code: codeNotAuthenticated, Message: err.Error()}
	case errors.Is(err, amazon.ErrMarkerNotFound), errors.Is(err, amazon.ErrNoSnapshot):
		return &jrpc2.Error{Code: codeContentNotFound, Message: err.Error()}
	case errors.Is(err, profile.ErrInvalidName),
		errors.Is(err, profile.ErrInvalidPayload),
		errors.Is(err, amazon.ErrInvalidASIN):
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	default:
		return err
	}
}

// PromptFromErrorData decodes the confirmation prompt carried by a
// codeConfirmationRequired error. Exposed for clients and tests.
func PromptFromErrorData(data []byte) (*session.ConfirmationPrompt, error) {
	var prompt session.ConfirmationPrompt
	if err := json.Unmarshal(data, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}
