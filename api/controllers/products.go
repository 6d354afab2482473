package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mweidner/product-inventory-backend/api/responses"
	"github.com/mweidner/product-inventory-backend/api/validators"
	productsvc "github.com/mweidner/product-inventory-backend/internal/products"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
	"github.com/mweidner/product-inventory-backend/pkg/logger"
	"github.com/mweidner/product-inventory-backend/pkg/pagination"
)

const (
	maxNameLength     = 255
	maxListLimit      = pagination.MaxLimit
	exportContentType = "text/csv"
)

type relationshipRequest struct {
	Type string `json:"relationshipType" validate:"required"`
	ID   string `json:"id" validate:"required"`
}

type priceRequest struct {
	Name                  string  `json:"name,omitempty"`
	PriceType             string  `json:"priceType" validate:"required"`
	Value                 *string `json:"value,omitempty"`
	Unit                  *string `json:"unit,omitempty"`
	RecurringChargePeriod *string `json:"recurringChargePeriod,omitempty"`
}

type createProductRequest struct {
	Name            string                `json:"name" validate:"required"`
	Description     *string               `json:"description,omitempty"`
	Status          string                `json:"status,omitempty"`
	BaseType        string                `json:"baseType" validate:"required"`
	Tags            []string              `json:"tags,omitempty"`
	StartDate       *time.Time            `json:"startDate,omitempty"`
	TerminationDate *time.Time            `json:"terminationDate,omitempty"`
	Relationships   []relationshipRequest `json:"referencedProducts,omitempty" validate:"omitempty,dive"`
	Prices          []priceRequest        `json:"productPrices,omitempty" validate:"omitempty,dive"`
}

func (req *createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	input := productsvc.CreateProductInput{
		Name:            validators.SanitizeString(req.Name, maxNameLength),
		Description:     req.Description,
		Tags:            req.Tags,
		StartDate:       req.StartDate,
		TerminationDate: req.TerminationDate,
	}

	if req.Status != "" {
		status, err := enums.ParseProductStatus(req.Status)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = status
	}

	baseType, err := enums.ParseBaseType(req.BaseType)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base type")
	}
	input.BaseType = baseType

	input.Relationships, err = toRelationshipInputs(req.Relationships)
	if err != nil {
		return input, err
	}
	input.Prices, err = toPriceInputs(req.Prices)
	if err != nil {
		return input, err
	}
	return input, nil
}

type updateProductRequest struct {
	Name            *string                `json:"name,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Status          *string                `json:"status,omitempty"`
	Tags            *[]string              `json:"tags,omitempty"`
	StartDate       *time.Time             `json:"startDate,omitempty"`
	TerminationDate *time.Time             `json:"terminationDate,omitempty"`
	Relationships   *[]relationshipRequest `json:"referencedProducts,omitempty" validate:"omitempty,dive"`
	Prices          *[]priceRequest        `json:"productPrices,omitempty" validate:"omitempty,dive"`
}

func (req *updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Description:     req.Description,
		Tags:            req.Tags,
		StartDate:       req.StartDate,
		TerminationDate: req.TerminationDate,
	}

	if req.Name != nil {
		name := validators.SanitizeString(*req.Name, maxNameLength)
		input.Name = &name
	}
	if req.Status != nil {
		status, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	if req.Relationships != nil {
		rels, err := toRelationshipInputs(*req.Relationships)
		if err != nil {
			return input, err
		}
		if rels == nil {
			rels = []productsvc.RelationshipInput{}
		}
		input.Relationships = &rels
	}
	if req.Prices != nil {
		prices, err := toPriceInputs(*req.Prices)
		if err != nil {
			return input, err
		}
		if prices == nil {
			prices = []productsvc.PriceInput{}
		}
		input.Prices = &prices
	}
	return input, nil
}

func toRelationshipInputs(rels []relationshipRequest) ([]productsvc.RelationshipInput, error) {
	var inputs []productsvc.RelationshipInput
	for _, rel := range rels {
		relType := strings.TrimSpace(rel.Type)
		refIdent := strings.TrimSpace(rel.ID)
		if relType == "" || refIdent == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "relationship type and id are required")
		}
		inputs = append(inputs, productsvc.RelationshipInput{
			Type:     enums.RelationshipType(relType),
			RefIdent: refIdent,
		})
	}
	return inputs, nil
}

func toPriceInputs(prices []priceRequest) ([]productsvc.PriceInput, error) {
	var inputs []productsvc.PriceInput
	for _, price := range prices {
		priceType, err := enums.ParsePriceType(price.PriceType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price type")
		}
		input := productsvc.PriceInput{
			Name:                  price.Name,
			PriceType:             priceType,
			AmountUnit:            price.Unit,
			RecurringChargePeriod: price.RecurringChargePeriod,
		}
		if price.Value != nil {
			amount, err := decimal.NewFromString(*price.Value)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price value")
			}
			input.AmountValue = &amount
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// CreateProduct handles POST /api/v1/products.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct handles GET /api/v1/products/{productId}.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		ident := chi.URLParam(r, "productId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithIdent(ctx, ident)
		}

		product, err := svc.GetProduct(ctx, ident)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts handles GET /api/v1/products.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.ListProductsInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Name: strings.TrimSpace(r.URL.Query().Get("name")),
			Tag:  strings.TrimSpace(r.URL.Query().Get("tag")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseProductStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("baseType")); raw != "" {
			baseType, err := enums.ParseBaseType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base type filter"))
				return
			}
			input.BaseType = &baseType
		}

		page, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// UpdateProduct handles PATCH /api/v1/products/{productId}.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		ident := chi.URLParam(r, "productId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithIdent(ctx, ident)
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(ctx, ident, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct handles DELETE /api/v1/products/{productId}.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		ident := chi.URLParam(r, "productId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithIdent(ctx, ident)
		}

		if err := svc.DeleteProduct(ctx, ident); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ExportProducts handles GET /api/v1/products/export?ids=a,b,c and streams
// the CSV document.
func ExportProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		idents := splitIdents(r.URL.Query().Get("ids"))
		if len(idents) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ids query parameter is required"))
			return
		}

		out, err := svc.ExportProducts(r.Context(), idents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", exportContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

func splitIdents(raw string) []string {
	var idents []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			idents = append(idents, trimmed)
		}
	}
	return idents
}
