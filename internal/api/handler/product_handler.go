package handler

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopadmin/catalog-auth/internal/api/metrics"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

// ProductHandler serves the owner-scoped product endpoints.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products/add.
//
//	@Summary	Create a product
//	@Tags		products
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		name	formData	string	true	"Product name"
//	@Param		price	formData	number	true	"Price, not negative"
//	@Param		photo	formData	file	true	"Product photo (image)"
//	@Success	201		{object}	productResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	401		{object}	errorResponse
//	@Failure	403		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/products/add [post]
func (h *ProductHandler) Create(c echo.Context) (err error) {
	defer func() { metrics.ProductOperationsTotal.WithLabelValues("create", resultOf(err)).Inc() }()

	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.FormValue("name"))
	rawPrice := strings.TrimSpace(c.FormValue("price"))
	fh, err := formFile(c, "photo")
	if err != nil {
		return err
	}
	if name == "" || rawPrice == "" || fh == nil {
		return fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return err
	}

	upload, closeFn, err := openUpload(fh)
	if err != nil {
		return err
	}
	defer closeFn()

	product, err := h.service.Create(c.Request().Context(), actor, ports.CreateProductInput{
		Name:  name,
		Price: price,
		Photo: upload,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, productResponse{Message: "Product added successfully", Product: product})
}

// List handles GET /products.
//
//	@Summary	List the caller's products
//	@Tags		products
//	@Produce	json
//	@Success	200	{array}		domain.Product
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Router		/products [get]
func (h *ProductHandler) List(c echo.Context) (err error) {
	defer func() { metrics.ProductOperationsTotal.WithLabelValues("list", resultOf(err)).Inc() }()

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	products, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Update handles PUT /products/update/:id. Every field is optional.
//
//	@Summary	Update a product
//	@Tags		products
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		string	true	"Product ID"
//	@Param		name	formData	string	false	"Product name"
//	@Param		price	formData	number	false	"Price, not negative"
//	@Param		photo	formData	file	false	"Replacement photo"
//	@Success	200		{object}	productResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	401		{object}	errorResponse
//	@Failure	403		{object}	errorResponse
//	@Failure	404		{object}	errorResponse
//	@Router		/products/update/{id} [put]
func (h *ProductHandler) Update(c echo.Context) (err error) {
	defer func() { metrics.ProductOperationsTotal.WithLabelValues("update", resultOf(err)).Inc() }()

	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var in ports.UpdateProductInput
	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		in.Name = &name
	}
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := parsePrice(raw)
		if err != nil {
			return err
		}
		in.Price = &price
	}

	fh, err := formFile(c, "photo")
	if err != nil {
		return err
	}
	if fh != nil {
		upload, closeFn, err := openUpload(fh)
		if err != nil {
			return err
		}
		defer closeFn()
		in.Photo = upload
	}

	product, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			metrics.AuthorizationDenialsTotal.WithLabelValues("not_owner").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, productResponse{Message: "Product updated successfully", Product: product})
}

// Delete handles DELETE /products/delete/:id.
//
//	@Summary	Delete a product
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	messageResponse
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Failure	404	{object}	errorResponse
//	@Router		/products/delete/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) (err error) {
	defer func() { metrics.ProductOperationsTotal.WithLabelValues("delete", resultOf(err)).Inc() }()

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			metrics.AuthorizationDenialsTotal.WithLabelValues("not_owner").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

// formFile returns nil when the field is absent or the body is not multipart.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unreadable photo upload", domain.ErrValidation)
	}
}

func openUpload(fh *multipart.FileHeader) (*ports.PhotoUpload, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	return &ports.PhotoUpload{Filename: fh.Filename, Content: src}, func() { _ = src.Close() }, nil
}

func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be a number", domain.ErrValidation)
	}
	if price < 0 {
		return 0, fmt.Errorf("%w: price must be a positive number", domain.ErrValidation)
	}
	return price, nil
}
