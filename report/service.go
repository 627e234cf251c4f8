// ABOUTME: Report pipeline: validate, fetch records, check capability, resolve range, assemble
// ABOUTME: Defines the RecordSource boundary and an in-memory implementation of it
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
)

// RecordSource fetches the raw records reports are built from.
type RecordSource interface {
	LoadDataset(ctx context.Context) (*models.Dataset, error)
}

// StaticSource serves a fixed dataset.
type StaticSource struct {
	Dataset *models.Dataset
}

func (s StaticSource) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Dataset == nil {
		return &models.Dataset{}, nil
	}
	return s.Dataset, nil
}

// Service runs the report pipeline. It holds no per-request state.
type Service struct {
	Source    RecordSource
	Options   Options
	WeekStart analytics.WeekStart
	Clock     func() time.Time
	Logger    *logrus.Logger

	initOnce sync.Once
	validate *validator.Validate
}

// NewService creates a service reading from src.
func NewService(src RecordSource, opts Options, weekStart analytics.WeekStart, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		Source:    src,
		Options:   opts,
		WeekStart: weekStart,
		Clock:     time.Now,
		Logger:    logger,
		validate:  NewValidator(),
	}
}

// init fills the zero fields of a Service built without NewService.
func (s *Service) init() {
	s.initOnce.Do(func() {
		if s.validate == nil {
			s.validate = NewValidator()
		}
		if s.Clock == nil {
			s.Clock = time.Now
		}
		if s.Logger == nil {
			s.Logger = logrus.New()
		}
	})
}

func (s *Service) now() time.Time {
	now := s.Clock()
	if loc := s.Options.Calculator.Location; loc != nil {
		now = now.In(loc)
	}
	return now
}

// Generate builds the requested report.
func (s *Service) Generate(ctx context.Context, req Request) (Report, error) {
	s.init()
	started := time.Now()
	log := s.Logger.WithFields(logrus.Fields{
		"run_id":    ulid.Make().String(),
		"viewer":    req.ViewerID,
		"type":      req.Type,
		"timeframe": req.Timeframe,
	})

	r, err := s.generate(ctx, req)
	log = log.WithField("duration_ms", time.Since(started).Milliseconds())
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			log.Warn("report access denied")
		} else {
			log.WithError(err).Error("report generation failed")
		}
		return nil, err
	}
	log.Info("report generated")
	return r, nil
}

func (s *Service) generate(ctx context.Context, req Request) (Report, error) {
	if err := Validate(s.validate, req); err != nil {
		return nil, err
	}

	ds, viewer, err := s.loadViewer(ctx, req.ViewerID)
	if err != nil {
		return nil, err
	}

	in := Input{
		Dataset:     ds,
		Viewer:      viewer,
		Timeframe:   analytics.Timeframe(req.Timeframe),
		GeneratedAt: s.now(),
	}
	if req.SubjectID != "" {
		subject, ok := ds.FindUser(req.SubjectID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, req.SubjectID)
		}
		in.Subject = &subject
	}

	in.Range, err = analytics.Resolve(in.Timeframe, req.Custom(), in.GeneratedAt, s.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve date range: %w", err)
	}

	return Assemble(req.Type, in, s.Options)
}

// loadViewer fetches the dataset and runs the capability check for viewerID.
func (s *Service) loadViewer(ctx context.Context, viewerID string) (*models.Dataset, models.User, error) {
	ds, err := s.Source.LoadDataset(ctx)
	if err != nil {
		return nil, models.User{}, fmt.Errorf("failed to load records: %w", err)
	}
	viewer, ok := ds.FindUser(viewerID)
	if !ok {
		return nil, models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, viewerID)
	}
	if err := CheckCapability(viewer); err != nil {
		return nil, models.User{}, err
	}
	return ds, viewer, nil
}

// VisibleUsers returns the users viewerID may see in reports.
func (s *Service) VisibleUsers(ctx context.Context, viewerID string) ([]models.User, error) {
	ds, viewer, err := s.loadViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return analytics.VisibleUsers(viewer, ds.Users), nil
}

// Dataset returns the current records for viewerID after the capability check.
func (s *Service) Dataset(ctx context.Context, viewerID string) (*models.Dataset, models.User, error) {
	return s.loadViewer(ctx, viewerID)
}
