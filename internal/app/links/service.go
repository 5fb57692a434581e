package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tinylink/internal/domain"
)

const (
	// autoCodeAttempts caps generate-and-insert rounds per request.
	autoCodeAttempts = 5

	createErrWrapFmt = "links create: %w"
)

type Service struct {
	store Store
	gen   CodeGenerator
	now   func() time.Time
	log   Logger
}

type Option func(*Service)

func WithGenerator(gen CodeGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.gen = gen
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		gen:   NewRandomCodeGenerator(),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:   NopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ UseCase = (*Service)(nil)

func (s *Service) Create(ctx context.Context, targetURL, customCode string) (domain.Link, error) {
	targetURL = strings.TrimSpace(targetURL)
	customCode = strings.TrimSpace(customCode)

	if err := domain.ValidateTargetURL(targetURL); err != nil {
		return domain.Link{}, err
	}

	if customCode == "" {
		return s.createWithGeneratedCode(ctx, targetURL)
	}

	if err := domain.ValidateCode(customCode); err != nil {
		return domain.Link{}, err
	}

	link, err := s.store.TryCreate(ctx, domain.NewLink{
		Code:      customCode,
		TargetURL: targetURL,
		CreatedAt: s.now(),
	})
	if err != nil {
		return domain.Link{}, fmt.Errorf(createErrWrapFmt, err)
	}

	s.log.Info("link created", "code", link.Code, "custom", true)

	return link, nil
}

func (s *Service) createWithGeneratedCode(ctx context.Context, targetURL string) (domain.Link, error) {
	for attempt := 1; attempt <= autoCodeAttempts; attempt++ {
		code, err := s.gen.Generate()
		if err != nil {
			return domain.Link{}, fmt.Errorf("links generate code: %w", err)
		}

		link, err := s.store.TryCreate(ctx, domain.NewLink{
			Code:      code,
			TargetURL: targetURL,
			CreatedAt: s.now(),
		})
		if errors.Is(err, domain.ErrCodeConflict) {
			s.log.Warn("generated code collided", "code", code, "attempt", attempt)

			continue
		}

		if err != nil {
			return domain.Link{}, fmt.Errorf(createErrWrapFmt, err)
		}

		s.log.Info("link created", "code", link.Code, "custom", false, "attempts", attempt)

		return link, nil
	}

	s.log.Error("code generation exhausted", "attempts", autoCodeAttempts)

	return domain.Link{}, fmt.Errorf(createErrWrapFmt, domain.ErrCodeGenerationExhausted)
}

// Resolve records a click and returns the target URL for code.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if !domain.IsValidCode(code) {
		return "", domain.ErrNotFound
	}

	target, err := s.store.ResolveAndRecord(ctx, code, s.now())
	if err != nil {
		return "", fmt.Errorf("links resolve: %w", err)
	}

	return target, nil
}

func (s *Service) Get(ctx context.Context, code string) (domain.Link, error) {
	if !domain.IsValidCode(code) {
		return domain.Link{}, domain.ErrNotFound
	}

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return domain.Link{}, fmt.Errorf("links get: %w", err)
	}

	return link, nil
}

func (s *Service) List(ctx context.Context, search string) ([]domain.Link, error) {
	items, err := s.store.List(ctx, ListFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, fmt.Errorf("links list: %w", err)
	}

	return items, nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if !domain.IsValidCode(code) {
		return domain.ErrNotFound
	}

	deleted, err := s.store.Delete(ctx, code)
	if err != nil {
		return fmt.Errorf("links delete: %w", err)
	}

	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("link deleted", "code", code)

	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("links ping: %w", err)
	}

	return nil
}
