package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"adt-service/internal/domain"
	"adt-service/internal/infrastructure/metrics"
	"adt-service/internal/repository"
	"adt-service/pkg/database"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidID             = errors.New("invalid advertisement ID")
	ErrInvalidInput          = errors.New("invalid advertisement")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrAdvertisementExists   = errors.New("advertisement already exists")
)

type AdvertisementService interface {
	CreateAdvertisement(ctx context.Context, ad *domain.CreateAdvertisement) (*domain.Advertisement, error)
	GetAdvertisementByID(ctx context.Context, id int64) (*domain.Advertisement, error)
	UpdateAdvertisement(ctx context.Context, id int64, patch *domain.AdvertisementPatch) error
	DeleteAdvertisement(ctx context.Context, id int64) error
}

type advertisementService struct {
	repository repository.AdvertisementRepository
	metrics    *metrics.ServiceMetrics
	validate   *validator.Validate
	tracer     trace.Tracer
}

func NewAdvertisementService(repository repository.AdvertisementRepository, metrics *metrics.ServiceMetrics) AdvertisementService {
	tracer := otel.Tracer("adt-service/service")
	return &advertisementService{
		repository: repository,
		metrics:    metrics,
		validate:   newValidator(),
		tracer:     tracer,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names rather than Go ones
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator errors into an ErrInvalidInput carrying
// the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", ErrInvalidInput, fe.Field(), fe.Param())
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidInput, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s failed on %s", ErrInvalidInput, fe.Field(), fe.Tag())
	}
}

func (s *advertisementService) CreateAdvertisement(ctx context.Context, ad *domain.CreateAdvertisement) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "CreateAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("CreateAdvertisement", status, startTime) }()

	if err := s.validate.StructCtx(ctx, ad); err != nil {
		status = "invalid"
		return nil, validationError(err)
	}

	created, err := s.repository.CreateAdvertisement(ctx, ad)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			status = "conflict"
			return nil, ErrAdvertisementExists
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("adt.id", created.ID))
	return created, nil
}

func (s *advertisementService) GetAdvertisementByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	if id < 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "GetAdvertisementByID")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("GetAdvertisementByID", status, startTime) }()

	span.SetAttributes(attribute.Int64("adt.id", id))

	ad, err := s.repository.GetAdvertisementByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return ad, nil
}

func (s *advertisementService) UpdateAdvertisement(ctx context.Context, id int64, patch *domain.AdvertisementPatch) error {
	if id < 0 {
		return ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "UpdateAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("UpdateAdvertisement", status, startTime) }()

	span.SetAttributes(attribute.Int64("adt.id", id))

	if err := s.validate.StructCtx(ctx, patch); err != nil {
		status = "invalid"
		return validationError(err)
	}

	// nothing to write, but a missing row is still reported
	if patch.Empty() {
		if _, err := s.repository.GetAdvertisementByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				status = "not_found"
				return ErrAdvertisementNotFound
			}
			status = "error"
			span.RecordError(err)
			return err
		}
		return nil
	}

	if err := s.repository.UpdateAdvertisement(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	return nil
}

func (s *advertisementService) DeleteAdvertisement(ctx context.Context, id int64) error {
	if id < 0 {
		return ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "DeleteAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("DeleteAdvertisement", status, startTime) }()

	span.SetAttributes(attribute.Int64("adt.id", id))

	if err := s.repository.DeleteAdvertisement(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	return nil
}
