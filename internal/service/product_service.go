package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restore/internal/cache"
	"restore/internal/catalog"
	"restore/internal/events"
	"restore/internal/imagestore"
	"restore/internal/model"
	"restore/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.ProductCache
	images      imagestore.Store
	publisher   events.Publisher
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
	images imagestore.Store,
	publisher events.Publisher,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		images:      images,
		publisher:   publisher,
		validate:    validator.New(),
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// snapshot returns every product, from the cache when possible.
func (s *productService) snapshot(ctx context.Context) ([]model.Product, error) {
	products, generation, ok := s.cache.Get(ctx)
	if ok {
		return products, nil
	}

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.cache.Set(ctx, products, generation)
	return products, nil
}

// List runs the catalog pipeline over the full product snapshot.
func (s *productService) List(ctx context.Context, params catalog.Params) (catalog.Page, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return catalog.Page{}, err
	}

	page := catalog.Apply(products, params)

	s.logger.Debug().
		Int("count", len(page.Items)).
		Int("total", page.Metadata.TotalCount).
		Int("page", page.Metadata.CurrentPage).
		Msg("listed products")

	return page, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Filters returns the distinct brands and types in the catalog.
func (s *productService) Filters(ctx context.Context) (model.ProductFilters, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return model.ProductFilters{}, err
	}
	return catalog.Distinct(products), nil
}

// Create validates input, stores the optional image and inserts the product.
func (s *productService) Create(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error) {
	input.ID = 0
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		PictureURL:      input.PictureURL,
		Type:            input.Type,
		Brand:           input.Brand,
		QuantityInStock: input.QuantityInStock,
	}

	var uploaded *imagestore.Result
	if image != nil {
		res, err := s.images.Upload(ctx, *image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		uploaded = res
		product.PictureURL = res.URL
		product.PublicID = &res.PublicID
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if uploaded != nil {
			s.deleteImage(ctx, uploaded.PublicID, 0)
		}
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Int64("product_id", product.ID).Msg("product created")
	s.afterWrite(ctx, events.ProductUpserted, product.ID)
	return product, nil
}

// Update overwrites a product, replacing its image when one is supplied.
func (s *productService) Update(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error) {
	if input.ID <= 0 {
		return nil, model.ValidationError("ID is required")
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	product := *existing
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Type = input.Type
	product.Brand = input.Brand
	product.QuantityInStock = input.QuantityInStock
	if input.PictureURL != "" {
		product.PictureURL = input.PictureURL
	}

	oldPublicID := existing.PublicID
	if image != nil {
		res, err := s.images.Upload(ctx, *image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		product.PictureURL = res.URL
		product.PublicID = &res.PublicID
	}

	if err := s.productRepo.Update(ctx, &product); err != nil {
		if image != nil {
			s.deleteImage(ctx, *product.PublicID, product.ID)
		}
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if image != nil && oldPublicID != nil {
		s.deleteImage(ctx, *oldPublicID, product.ID)
	}

	s.logger.Info().Int64("product_id", product.ID).Msg("product updated")
	s.afterWrite(ctx, events.ProductUpserted, product.ID)
	return &product, nil
}

// Delete removes a product and its image.
func (s *productService) Delete(ctx context.Context, id int64) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if existing.PublicID != nil {
		s.deleteImage(ctx, *existing.PublicID, id)
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	s.afterWrite(ctx, events.ProductDeleted, id)
	return nil
}

// afterWrite runs once a write has committed. Nothing here can fail the write.
func (s *productService) afterWrite(ctx context.Context, eventType events.EventType, productID int64) {
	s.cache.Invalidate(ctx)

	if err := s.publisher.Publish(ctx, events.NewProductEvent(eventType, productID)); err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to publish product event")
	}
}

func (s *productService) deleteImage(ctx context.Context, publicID string, productID int64) {
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Str("public_id", publicID).Msg("failed to delete image")
	}
}

func (s *productService) validateInput(input model.ProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.ValidationError(err.Error())
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return model.ValidationError(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
