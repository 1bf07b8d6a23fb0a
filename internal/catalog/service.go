package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type createInput struct {
	Name string `json:"name" validate:"required,min=3"`
}

// Service is the only path to the product collection. It validates input and
// turns store results into ErrNotFound / *ValidationError.
type Service struct {
	store    Store
	validate *validator.Validate
	log      *zap.Logger
	metrics  *Metrics
}

// NewService wires a Service; log and metrics may be nil.
func NewService(store Store, log *zap.Logger, metrics *Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		validate: newValidator(),
		log:      log.With(zap.String("component", "catalog")),
		metrics:  metrics,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// List returns every product, or only those whose name equals name ignoring
// case. An empty name means no filter. The result is never nil.
func (s *Service) List(ctx context.Context, name string) ([]Product, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if name == "" {
		return all, nil
	}

	out := make([]Product, 0, 1)
	for _, p := range all {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Create validates name and appends a product with the next free id.
// On a validation failure the collection is left untouched.
func (s *Service) Create(ctx context.Context, name string) (Product, error) {
	if err := s.validateCreate(createInput{Name: name}); err != nil {
		s.metrics.rejected(rejectValidation)
		return Product{}, err
	}

	p, err := s.store.Create(ctx, name)
	if err != nil {
		s.metrics.rejected(rejectStore)
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	s.metrics.created()
	s.log.Info("product created", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *Service) validateCreate(in createInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed on rule: " + fe.Tag()
	}
	return &ValidationError{Fields: fields}
}
