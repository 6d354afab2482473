package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mweidner/product-inventory-backend/pkg/logger"
)

// expiredTerminator moves products past their termination date to TERMINATED.
type expiredTerminator interface {
	TerminateExpired(ctx context.Context, now time.Time) (int64, error)
}

// TerminateExpiredJobParams configure the product termination sweep.
type TerminateExpiredJobParams struct {
	Logger   *logger.Logger
	Products expiredTerminator
}

// NewTerminateExpiredJob builds the cron job that sweeps products whose
// termination date has passed.
func NewTerminateExpiredJob(params TerminateExpiredJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product service required")
	}
	return &terminateExpiredJob{
		logg:     params.Logger,
		products: params.Products,
		now:      time.Now,
	}, nil
}

type terminateExpiredJob struct {
	logg     *logger.Logger
	products expiredTerminator
	now      func() time.Time
}

func (j *terminateExpiredJob) Name() string { return "terminate-expired-products" }

func (j *terminateExpiredJob) Run(ctx context.Context) error {
	count, err := j.products.TerminateExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("terminate expired products: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "termination sweep complete")
	return nil
}
